package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rpggio/nestly/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedClient blocks every query until release is closed.
type gatedClient struct {
	store.Client
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	rows    []store.Row
}

func newGatedClient(rows ...store.Row) *gatedClient {
	return &gatedClient{started: make(chan struct{}, 16), release: make(chan struct{}), rows: rows}
}

func (g *gatedClient) Query(ctx context.Context, q store.Query) (store.Result, error) {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return store.Result{}, ctx.Err()
	}
	return store.Result{Rows: g.rows, Count: len(g.rows)}, nil
}

func TestDedup_SharesInFlightQuery(t *testing.T) {
	inner := newGatedClient(store.Row{"id": "p1"})
	d := store.Dedup(inner)
	q := store.From("properties").Take(5)

	var wg sync.WaitGroup
	results := make([]store.Result, 3)
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = d.Query(context.Background(), q)
	}()
	<-inner.started

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.Query(context.Background(), q)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(1), inner.calls.Load())
	for i := range results {
		require.NoError(t, errs[i])
		require.Len(t, results[i].Rows, 1)
	}

	// Each caller owns its rows.
	results[0].Rows[0]["id"] = "changed"
	assert.Equal(t, "p1", results[1].Rows[0].String("id"))
}

func TestDedup_CallersOwnEmbeddedRows(t *testing.T) {
	inner := newGatedClient(store.Row{
		"id":        "p1",
		"agent":     store.Row{"name": "Ann"},
		"amenities": []string{"pool"},
		"photos":    []any{map[string]any{"url": "a.jpg"}},
	})
	d := store.Dedup(inner)
	q := store.From("properties").Take(1)

	var wg sync.WaitGroup
	results := make([]store.Result, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = d.Query(context.Background(), q)
	}()
	<-inner.started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = d.Query(context.Background(), q)
	}()
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()
	require.Equal(t, int32(1), inner.calls.Load())
	require.Len(t, results[0].Rows, 1)
	require.Len(t, results[1].Rows, 1)

	mine := results[0].Rows[0]
	mine["agent"].(store.Row)["name"] = "Bob"
	mine["amenities"].([]string)[0] = "gym"
	mine["photos"].([]any)[0].(map[string]any)["url"] = "b.jpg"

	theirs := results[1].Rows[0]
	assert.Equal(t, "Ann", theirs["agent"].(store.Row)["name"])
	assert.Equal(t, []string{"pool"}, theirs["amenities"])
	assert.Equal(t, "a.jpg", theirs["photos"].([]any)[0].(map[string]any)["url"])
	assert.Equal(t, "Ann", inner.rows[0]["agent"].(store.Row)["name"])
}

func TestRow_DeepCloneLeavesSourceUntouched(t *testing.T) {
	src := store.Row{"id": "p1", "agent": map[string]any{"name": "Ann"}, "tags": []store.Row{{"k": "v"}}}
	cp := src.DeepClone()

	cp["agent"].(map[string]any)["name"] = "Bob"
	cp["tags"].([]store.Row)[0]["k"] = "w"

	assert.Equal(t, "Ann", src["agent"].(map[string]any)["name"])
	assert.Equal(t, "v", src["tags"].([]store.Row)[0]["k"])
	assert.Nil(t, store.Row(nil).DeepClone())
}

func TestDedup_DistinctQueriesAreNotShared(t *testing.T) {
	inner := newGatedClient()
	close(inner.release)
	d := store.Dedup(inner)

	_, err := d.Query(context.Background(), store.From("properties").Take(1))
	require.NoError(t, err)
	_, err = d.Query(context.Background(), store.From("properties").Take(2))
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestDedup_CallerCancellation(t *testing.T) {
	inner := newGatedClient()
	d := store.Dedup(inner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.Query(ctx, store.From("properties"))
		done <- err
	}()
	<-inner.started
	cancel()

	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	close(inner.release)
}
