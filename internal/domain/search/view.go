package search

import (
	"context"

	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/mutation"
)

// View keeps one user's saved searches current.
type View struct {
	svc    *Service
	userID string
	loader *loader.Loader[[]SavedSearch]
}

// NewView creates a view of userID's saved searches.
func NewView(svc *Service, userID string, opts ...loader.Option) *View {
	v := &View{svc: svc, userID: userID}
	v.loader = loader.New("saved_searches", func(ctx context.Context) ([]SavedSearch, error) {
		return svc.List(ctx, userID)
	}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...)
	return v
}

func (v *View) Load(ctx context.Context) loader.State[[]SavedSearch] {
	return v.loader.Load(ctx)
}

func (v *View) Retry(ctx context.Context) loader.State[[]SavedSearch] {
	return v.loader.Retry(ctx)
}

func (v *View) State() loader.State[[]SavedSearch] {
	return v.loader.State()
}

func (v *View) Close() {
	v.loader.Close()
}

// Create saves a search and reloads.
func (v *View) Create(ctx context.Context, req CreateRequest) mutation.Result[SavedSearch] {
	return mutation.Run(ctx, "create_saved_search", func(ctx context.Context) (SavedSearch, error) {
		saved, err := v.svc.Create(ctx, v.userID, req)
		if err != nil {
			return SavedSearch{}, err
		}
		return *saved, nil
	}, v.opts()...)
}

// Delete removes a saved search and reloads.
func (v *View) Delete(ctx context.Context, id string) mutation.Result[string] {
	return mutation.Run(ctx, "delete_saved_search", func(ctx context.Context) (string, error) {
		return id, v.svc.Delete(ctx, v.userID, id)
	}, v.opts()...)
}

// SetAlerts toggles alerts on a saved search and reloads.
func (v *View) SetAlerts(ctx context.Context, id string, enabled bool) mutation.Result[SavedSearch] {
	return mutation.Run(ctx, "toggle_search_alerts", func(ctx context.Context) (SavedSearch, error) {
		saved, err := v.svc.SetAlerts(ctx, v.userID, id, enabled)
		if err != nil {
			return SavedSearch{}, err
		}
		return *saved, nil
	}, v.opts()...)
}

func (v *View) opts() []mutation.Option {
	return []mutation.Option{
		mutation.WithRefetch(func(ctx context.Context) { v.loader.Load(ctx) }),
		mutation.WithLogger(v.svc.logger),
	}
}
