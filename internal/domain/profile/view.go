package profile

import (
	"context"

	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/mutation"
)

// View keeps a user's profile current.
type View struct {
	svc    *Service
	userID string
	loader *loader.Loader[*Profile]
}

// NewView creates a view of userID's profile.
func NewView(svc *Service, userID string, opts ...loader.Option) *View {
	v := &View{svc: svc, userID: userID}
	v.loader = loader.New("profile", func(ctx context.Context) (*Profile, error) {
		return svc.Get(ctx, userID)
	}, append([]loader.Option{loader.WithLogger(svc.logger)}, opts...)...)
	return v
}

func (v *View) Load(ctx context.Context) loader.State[*Profile] { return v.loader.Load(ctx) }

func (v *View) Retry(ctx context.Context) loader.State[*Profile] { return v.loader.Retry(ctx) }

func (v *View) State() loader.State[*Profile] { return v.loader.State() }

func (v *View) Close() { v.loader.Close() }

// Update changes the profile and reloads it.
func (v *View) Update(ctx context.Context, req UpdateRequest) mutation.Result[Profile] {
	return mutation.Run(ctx, "update_profile", func(ctx context.Context) (Profile, error) {
		p, err := v.svc.Update(ctx, v.userID, req)
		if err != nil {
			return Profile{}, err
		}
		return *p, nil
	},
		mutation.WithRefetch(func(ctx context.Context) { v.loader.Load(ctx) }),
		mutation.WithLogger(v.svc.logger),
	)
}
