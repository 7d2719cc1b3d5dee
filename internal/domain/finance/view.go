package finance

import (
	"context"
	"time"

	"github.com/rpggio/nestly/internal/loader"
)

// View keeps the financial summary current.
type View struct {
	loader *loader.Loader[*Summary]
}

// NewView creates a summary view covering transactions since since.
func NewView(svc *Service, since time.Time, opts ...loader.Option) *View {
	return &View{
		loader: loader.New("finance", func(ctx context.Context) (*Summary, error) {
			return svc.Summary(ctx, since)
		}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...),
	}
}

func (v *View) Load(ctx context.Context) loader.State[*Summary] { return v.loader.Load(ctx) }

func (v *View) Retry(ctx context.Context) loader.State[*Summary] { return v.loader.Retry(ctx) }

func (v *View) State() loader.State[*Summary] { return v.loader.State() }

func (v *View) Close() { v.loader.Close() }
