package favorite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/domain/property"
	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding favorites.
const Collection = "favorites"

// propertyEmbed pulls the listing fields shown next to a favorite.
var propertyEmbed = store.Embed{
	Collection: property.Collection,
	LocalKey:   "property_id",
	As:         "property",
	Columns:    []string{"id", "title", "city", "state", "price", "property_type", "listing_type", "images"},
}

// Service handles a user's favorites.
type Service struct {
	client store.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new favorite service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger, now: time.Now}
}

// List returns the user's favorites, newest first, with their listings.
func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	q := store.From(Collection).
		Filter(store.Eq("user_id", userID)).
		OrderBy("created_at", true).
		With(propertyEmbed)
	res, err := s.client.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]Favorite, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

// Add saves a property for the user. Saving the same property twice fails
// with a unique violation.
func (s *Service) Add(ctx context.Context, userID, propertyID string) (*Favorite, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(propertyID) == "" {
		return nil, ErrInvalidInput
	}
	row, err := s.client.Insert(ctx, Collection, store.Row{
		"user_id":     userID,
		"property_id": propertyID,
		"created_at":  s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("adding favorite: %w", err)
	}
	fav := fromRow(row)
	return &fav, nil
}

// Remove deletes the user's favorite for a property.
func (s *Service) Remove(ctx context.Context, userID, propertyID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(propertyID) == "" {
		return ErrInvalidInput
	}
	err := s.client.Delete(ctx, Collection, []store.Predicate{
		store.Eq("user_id", userID),
		store.Eq("property_id", propertyID),
	})
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

func fromRow(r store.Row) Favorite {
	fav := Favorite{
		ID:         r.String("id"),
		UserID:     r.String("user_id"),
		PropertyID: r.String("property_id"),
		CreatedAt:  r.Time("created_at"),
	}
	if embedded := r.Embedded("property"); embedded != nil {
		p := property.FromRow(embedded)
		fav.Property = &p
	}
	return fav
}
