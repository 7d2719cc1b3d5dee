package activity

import (
	"context"

	"github.com/rpggio/nestly/internal/loader"
)

// FeedView keeps a user's activity feed current.
type FeedView struct {
	loader *loader.Loader[[]Activity]
}

// NewFeedView creates a feed view for userID.
func NewFeedView(svc *Service, userID string, opts ...loader.Option) *FeedView {
	return &FeedView{
		loader: loader.New("activity", func(ctx context.Context) ([]Activity, error) {
			return svc.Feed(ctx, userID)
		}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...),
	}
}

// Load fetches the feed.
func (v *FeedView) Load(ctx context.Context) loader.State[[]Activity] {
	return v.loader.Load(ctx)
}

// Retry resets the retry count and fetches immediately.
func (v *FeedView) Retry(ctx context.Context) loader.State[[]Activity] {
	return v.loader.Retry(ctx)
}

// State returns the current snapshot.
func (v *FeedView) State() loader.State[[]Activity] {
	return v.loader.State()
}

// Close stops the view. Late completions are ignored.
func (v *FeedView) Close() {
	v.loader.Close()
}
