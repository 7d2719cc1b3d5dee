package store

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Deduplicated shares in-flight reads between identical queries. Writes
// are passed through untouched. Results are never cached past completion.
type Deduplicated struct {
	Client
	group singleflight.Group
}

// Dedup wraps c so concurrent identical queries issue a single read.
func Dedup(c Client) *Deduplicated {
	return &Deduplicated{Client: c}
}

// Query joins an identical in-flight query when there is one.
func (d *Deduplicated) Query(ctx context.Context, q Query) (Result, error) {
	key := q.Fingerprint()
	if key == "" {
		return d.Client.Query(ctx, q)
	}
	ch := d.group.DoChan(key, func() (any, error) {
		// Detached from the first caller so its cancellation doesn't fail
		// the callers sharing the flight.
		return d.Client.Query(context.WithoutCancel(ctx), q)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		shared := res.Val.(Result)
		// Callers may mutate their rows, embedded ones included; hand each
		// one its own copy.
		rows := make([]Row, len(shared.Rows))
		for i, row := range shared.Rows {
			rows[i] = row.DeepClone()
		}
		return Result{Rows: rows, Count: shared.Count}, nil
	}
}
