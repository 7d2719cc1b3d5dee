package support_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/domain/support"
	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore() *memstore.Store {
	return memstore.New(memstore.WithSchema(support.Collection,
		"user_id", "subject", "message", "status", "priority", "created_at", "updated_at"))
}

func TestService_CreateDefaults(t *testing.T) {
	svc := support.NewService(newStore(), nil)

	ticket, err := svc.Create(context.Background(), "u1", support.CreateRequest{Subject: "Listing photos", Message: "They won't upload"})
	require.NoError(t, err)
	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, support.StatusOpen, ticket.Status)
	assert.Equal(t, support.PriorityNormal, ticket.Priority)
}

func TestService_CreateValidation(t *testing.T) {
	svc := support.NewService(newStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", support.CreateRequest{Subject: "", Message: "x"})
	assert.ErrorIs(t, err, support.ErrInvalidInput)

	_, err = svc.Create(ctx, "u1", support.CreateRequest{Subject: "x", Message: "y", Priority: "asap"})
	assert.ErrorIs(t, err, support.ErrInvalidInput)
}

func TestView_CreateRefetches(t *testing.T) {
	ctx := context.Background()
	view := support.NewView(support.NewService(newStore(), nil), "u1", loader.WithClock(retry.NewManualClock(time.Time{})))
	defer view.Close()

	assert.Empty(t, view.Load(ctx).Data)

	res := view.Create(ctx, support.CreateRequest{Subject: "Billing", Message: "Charged twice", Priority: support.PriorityHigh})
	require.True(t, res.Success)
	require.Len(t, view.State().Data, 1)
	assert.Equal(t, support.PriorityHigh, view.State().Data[0].Priority)
}
