package favorite

import (
	"context"
	"log/slog"

	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/mutation"
)

// SavedView keeps one user's favorites current. Writes made through it
// reload the list when they succeed.
type SavedView struct {
	svc    *Service
	userID string
	logger *slog.Logger
	loader *loader.Loader[[]Favorite]
}

// NewSavedView creates a view of userID's favorites.
func NewSavedView(svc *Service, userID string, opts ...loader.Option) *SavedView {
	v := &SavedView{svc: svc, userID: userID, logger: svc.logger}
	v.loader = loader.New("favorites", func(ctx context.Context) ([]Favorite, error) {
		return svc.List(ctx, userID)
	}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...)
	return v
}

// Load fetches the favorites.
func (v *SavedView) Load(ctx context.Context) loader.State[[]Favorite] {
	return v.loader.Load(ctx)
}

// Retry resets the retry count and fetches immediately.
func (v *SavedView) Retry(ctx context.Context) loader.State[[]Favorite] {
	return v.loader.Retry(ctx)
}

// State returns the current snapshot.
func (v *SavedView) State() loader.State[[]Favorite] {
	return v.loader.State()
}

// Contains reports whether propertyID is among the loaded favorites.
func (v *SavedView) Contains(propertyID string) bool {
	for _, f := range v.loader.State().Data {
		if f.PropertyID == propertyID {
			return true
		}
	}
	return false
}

// Add saves a property and reloads the list.
func (v *SavedView) Add(ctx context.Context, propertyID string) mutation.Result[Favorite] {
	return mutation.Run(ctx, "add_favorite", func(ctx context.Context) (Favorite, error) {
		fav, err := v.svc.Add(ctx, v.userID, propertyID)
		if err != nil {
			return Favorite{}, err
		}
		return *fav, nil
	}, mutation.WithRefetch(v.refetch), mutation.WithLogger(v.logger))
}

// Remove deletes a saved property and reloads the list.
func (v *SavedView) Remove(ctx context.Context, propertyID string) mutation.Result[string] {
	return mutation.Run(ctx, "remove_favorite", func(ctx context.Context) (string, error) {
		return propertyID, v.svc.Remove(ctx, v.userID, propertyID)
	}, mutation.WithRefetch(v.refetch), mutation.WithLogger(v.logger))
}

// Close stops the view.
func (v *SavedView) Close() {
	v.loader.Close()
}

func (v *SavedView) refetch(ctx context.Context) {
	v.loader.Load(ctx)
}
