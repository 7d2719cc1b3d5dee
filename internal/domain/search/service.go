package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding saved searches.
const Collection = "saved_searches"

// Service handles saved searches.
type Service struct {
	client store.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new saved search service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger, now: time.Now}
}

// List returns the user's saved searches, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]SavedSearch, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	q := store.From(Collection).
		Filter(store.Eq("user_id", userID)).
		OrderBy("created_at", true)
	res, err := s.client.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]SavedSearch, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Create saves a search for the user.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*SavedSearch, error) {
	name := strings.TrimSpace(req.Name)
	if strings.TrimSpace(userID) == "" || name == "" {
		return nil, ErrInvalidInput
	}
	criteria, err := json.Marshal(req.Criteria)
	if err != nil {
		return nil, fmt.Errorf("encoding criteria: %w", err)
	}
	row, err := s.client.Insert(ctx, Collection, store.Row{
		"user_id":        userID,
		"name":           name,
		"criteria":       string(criteria),
		"alerts_enabled": req.AlertsEnabled,
		"created_at":     s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating saved search: %w", err)
	}
	saved := FromRow(row)
	return &saved, nil
}

// Delete removes one of the user's saved searches.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	err := s.client.Delete(ctx, Collection, []store.Predicate{
		store.Eq("id", id),
		store.Eq("user_id", userID),
	})
	if err != nil {
		return fmt.Errorf("deleting saved search: %w", err)
	}
	return nil
}

// SetAlerts turns alerts for a saved search on or off.
func (s *Service) SetAlerts(ctx context.Context, userID, id string, enabled bool) (*SavedSearch, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	rows, err := s.client.Update(ctx, Collection,
		store.Row{"alerts_enabled": enabled},
		[]store.Predicate{store.Eq("id", id), store.Eq("user_id", userID)},
	)
	if err != nil {
		return nil, fmt.Errorf("updating saved search alerts: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	saved := FromRow(rows[0])
	return &saved, nil
}

// FromRow maps a store row to a SavedSearch. Malformed criteria decode as
// an empty filter.
func FromRow(r store.Row) SavedSearch {
	saved := SavedSearch{
		ID:            r.String("id"),
		UserID:        r.String("user_id"),
		Name:          r.String("name"),
		AlertsEnabled: r.Bool("alerts_enabled"),
		CreatedAt:     r.Time("created_at"),
	}
	switch v := r["criteria"].(type) {
	case map[string]any:
		if data, err := json.Marshal(v); err == nil {
			_ = json.Unmarshal(data, &saved.Criteria)
		}
	default:
		if raw := r.String("criteria"); raw != "" {
			_ = json.Unmarshal([]byte(raw), &saved.Criteria)
		}
	}
	return saved
}
