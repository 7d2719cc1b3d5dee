package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/domain/profile"
	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/store"
	"github.com/rpggio/nestly/internal/store/memstore"
	"github.com/rpggio/nestly/internal/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStore() *memstore.Store {
	s := memstore.New(memstore.WithSchema(profile.Collection,
		"full_name", "email", "phone", "avatar_url", "bio", "role", "created_at", "updated_at"))
	s.Seed(profile.Collection, store.Row{"id": "u1", "full_name": "Dana Reyes", "email": "dana@example.com"})
	return s
}

func TestService_Get(t *testing.T) {
	svc := profile.NewService(newStore(), nil)

	p, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Reyes", p.FullName)
	assert.Equal(t, profile.RoleBuyer, p.Role)

	_, err = svc.Get(context.Background(), "u2")
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	svc := profile.NewService(newStore(), nil)
	name, phone := "  Dana R. ", "555-0100"

	p, err := svc.Update(context.Background(), "u1", profile.UpdateRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Dana R.", p.FullName)
	assert.Equal(t, "555-0100", p.Phone)
	assert.Equal(t, "dana@example.com", p.Email)
	assert.False(t, p.UpdatedAt.IsZero())
}

func TestService_UpdateValidation(t *testing.T) {
	svc := profile.NewService(newStore(), nil)
	blank := "  "

	_, err := svc.Update(context.Background(), "u1", profile.UpdateRequest{FullName: &blank})
	assert.ErrorIs(t, err, profile.ErrInvalidInput)

	_, err = svc.Update(context.Background(), "u1", profile.UpdateRequest{})
	assert.ErrorIs(t, err, profile.ErrInvalidInput)

	bio := "hi"
	_, err = svc.Update(context.Background(), "ghost", profile.UpdateRequest{Bio: &bio})
	assert.ErrorIs(t, err, profile.ErrNotFound)
}

func TestService_UpdateSendsPatch(t *testing.T) {
	ctx := context.Background()
	client := &mocks.Client{}
	client.On("Update", ctx, profile.Collection,
		mock.MatchedBy(func(patch store.Row) bool {
			_, stamped := patch["updated_at"]
			return patch["bio"] == "Agent in Tulsa" && stamped && len(patch) == 2
		}),
		[]store.Predicate{store.Eq("id", "u1")},
	).Return([]store.Row{{"id": "u1", "bio": "Agent in Tulsa", "role": "agent"}}, nil).Once()

	bio := "Agent in Tulsa"
	p, err := profile.NewService(client, nil).Update(ctx, "u1", profile.UpdateRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, profile.RoleAgent, p.Role)
	client.AssertExpectations(t)
}

func TestView_UpdateRefetches(t *testing.T) {
	ctx := context.Background()
	view := profile.NewView(profile.NewService(newStore(), nil), "u1", loader.WithClock(retry.NewManualClock(time.Time{})))
	defer view.Close()

	st := view.Load(ctx)
	require.NotNil(t, st.Data)
	assert.Equal(t, "Dana Reyes", st.Data.FullName)

	name := "Dana Q. Reyes"
	res := view.Update(ctx, profile.UpdateRequest{FullName: &name})
	require.True(t, res.Success)
	assert.Equal(t, "Dana Q. Reyes", view.State().Data.FullName)

	blank := ""
	res = view.Update(ctx, profile.UpdateRequest{FullName: &blank})
	assert.False(t, res.Success)
	assert.Equal(t, "invalid profile input: full name is required", res.Error)
}
