package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/loader"
	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/store"
	"github.com/rpggio/nestly/internal/store/memstore"
	"github.com/rpggio/nestly/internal/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 12, 0, 0, 0, time.UTC)
}

func TestService_Summary(t *testing.T) {
	client := memstore.New(memstore.WithSchema(Collection, "user_id", "property_id", "amount", "kind", "status", "created_at"))
	client.Seed(Collection,
		store.Row{"id": "t1", "amount": 500000.0, "kind": "sale", "status": "completed", "created_at": day(time.January, 5)},
		store.Row{"id": "t2", "amount": 15000.0, "kind": "commission", "status": "completed", "created_at": day(time.January, 6)},
		store.Row{"id": "t3", "amount": 2000.0, "kind": "rent", "status": "completed", "created_at": day(time.February, 1)},
		store.Row{"id": "t4", "amount": 500.0, "kind": "refund", "status": "completed", "created_at": day(time.February, 3)},
		store.Row{"id": "t5", "amount": 99.0, "kind": "fee", "status": "pending", "created_at": day(time.February, 4)},
		store.Row{"id": "t6", "amount": 3000.0, "kind": "rent", "status": "failed", "created_at": day(time.February, 5)},
	)

	sum, err := NewService(client, nil).Summary(context.Background(), time.Time{})
	require.NoError(t, err)

	assert.Equal(t, 516500.0, sum.TotalRevenue)
	assert.Equal(t, 500000.0, sum.ByKind[KindSale])
	assert.Equal(t, 15000.0, sum.ByKind[KindCommission])
	assert.Equal(t, 500.0, sum.Refunds)
	assert.Equal(t, 99.0, sum.PendingAmount)
	assert.Equal(t, 1, sum.FailedCount)
	assert.Equal(t, 6, sum.TransactionCount)
	assert.Equal(t, []MonthlyTotal{{Month: "2025-01", Revenue: 515000}, {Month: "2025-02", Revenue: 1500}}, sum.Monthly)
	require.Len(t, sum.Recent, 6)
	assert.Equal(t, "t6", sum.Recent[0].ID)

	sum, err = NewService(client, nil).Summary(context.Background(), day(time.February, 1))
	require.NoError(t, err)
	assert.Equal(t, 4, sum.TransactionCount)
	assert.Equal(t, 1500.0, sum.TotalRevenue)
}

func TestSummarize_RecentCapped(t *testing.T) {
	var txns []Transaction
	for i := 0; i < 15; i++ {
		txns = append(txns, Transaction{ID: string(rune('a' + i)), Amount: 1, Kind: KindFee, Status: StatusCompleted})
	}
	sum := summarize(txns)
	assert.Len(t, sum.Recent, recentLimit)
	assert.Equal(t, 15.0, sum.TotalRevenue)
}

func TestView_ErrorIsVisible(t *testing.T) {
	client := &mocks.Client{}
	client.On("Query", mock.Anything, mock.Anything).Return(store.Result{}, errors.New("upstream unavailable"))

	clock := retry.NewManualClock(time.Time{})
	view := NewView(NewService(client, nil), time.Time{}, loader.WithClock(clock))
	defer view.Close()

	st := view.Load(context.Background())
	assert.Nil(t, st.Data)
	assert.Equal(t, "upstream unavailable", st.Error)
	assert.True(t, st.IsRetrying)
	assert.Equal(t, 1, clock.Pending())
}
