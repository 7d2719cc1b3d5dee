package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/nestly/internal/store"
)

// Collection is the store collection holding profiles.
const Collection = "profiles"

// Service handles user profiles.
type Service struct {
	client store.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new profile service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger, now: time.Now}
}

// Get fetches a user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	res, err := s.client.Query(ctx, store.From(Collection).Filter(store.Eq("id", userID)).Take(1))
	if err != nil {
		return nil, err
	}
	if len(res.Rows) == 0 {
		return nil, ErrNotFound
	}
	p := fromRow(res.Rows[0])
	return &p, nil
}

// Update applies req to the user's profile.
func (s *Service) Update(ctx context.Context, userID string, req UpdateRequest) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}

	patch := store.Row{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
		}
		patch["full_name"] = name
	}
	if req.Phone != nil {
		patch["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.AvatarURL != nil {
		patch["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Bio != nil {
		patch["bio"] = *req.Bio
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	patch["updated_at"] = s.now().UTC()

	rows, err := s.client.Update(ctx, Collection, patch, []store.Predicate{store.Eq("id", userID)})
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	p := fromRow(rows[0])
	return &p, nil
}

func fromRow(r store.Row) Profile {
	role := Role(r.String("role"))
	if role == "" {
		role = RoleBuyer
	}
	return Profile{
		ID:        r.String("id"),
		FullName:  r.String("full_name"),
		Email:     r.String("email"),
		Phone:     r.String("phone"),
		AvatarURL: r.String("avatar_url"),
		Bio:       r.String("bio"),
		Role:      role,
		CreatedAt: r.Time("created_at"),
		UpdatedAt: r.Time("updated_at"),
	}
}
