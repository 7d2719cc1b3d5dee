package support

import (
	"context"

	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/mutation"
)

// View keeps a user's tickets current.
type View struct {
	svc    *Service
	userID string
	loader *loader.Loader[[]Ticket]
}

// NewView creates a view of userID's tickets.
func NewView(svc *Service, userID string, opts ...loader.Option) *View {
	v := &View{svc: svc, userID: userID}
	v.loader = loader.New("support_tickets", func(ctx context.Context) ([]Ticket, error) {
		return svc.List(ctx, userID)
	}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...)
	return v
}

func (v *View) Load(ctx context.Context) loader.State[[]Ticket] { return v.loader.Load(ctx) }

func (v *View) Retry(ctx context.Context) loader.State[[]Ticket] { return v.loader.Retry(ctx) }

func (v *View) State() loader.State[[]Ticket] { return v.loader.State() }

func (v *View) Close() { v.loader.Close() }

// Create opens a ticket and reloads.
func (v *View) Create(ctx context.Context, req CreateRequest) mutation.Result[Ticket] {
	return mutation.Run(ctx, "create_ticket", func(ctx context.Context) (Ticket, error) {
		t, err := v.svc.Create(ctx, v.userID, req)
		if err != nil {
			return Ticket{}, err
		}
		return *t, nil
	},
		mutation.WithRefetch(func(ctx context.Context) { v.loader.Load(ctx) }),
		mutation.WithLogger(v.svc.logger),
	)
}
