package property

import (
	"context"
	"sync"

	"github.com/rpggio/nestly/internal/loader"
)

// ListView keeps the result of a property search current. Changing the
// criteria supersedes any fetch still running for the old ones.
type ListView struct {
	svc    *Service
	loader *loader.Loader[QueryResult[Property]]

	mu       sync.Mutex
	criteria FilterCriteria
}

// NewListView creates a view over svc for criteria.
func NewListView(svc *Service, criteria FilterCriteria, opts ...loader.Option) *ListView {
	v := &ListView{svc: svc, criteria: criteria}
	v.loader = loader.New("properties", v.fetch, opts...)
	return v
}

func (v *ListView) fetch(ctx context.Context) (QueryResult[Property], error) {
	v.mu.Lock()
	c := v.criteria
	v.mu.Unlock()
	return v.svc.List(ctx, c)
}

// Load fetches with the current criteria.
func (v *ListView) Load(ctx context.Context) QueryResult[Property] {
	v.loader.Load(ctx)
	return v.Result()
}

// SetCriteria replaces the criteria and reloads.
func (v *ListView) SetCriteria(ctx context.Context, c FilterCriteria) QueryResult[Property] {
	v.mu.Lock()
	v.criteria = c
	v.mu.Unlock()
	return v.Load(ctx)
}

// Retry resets the retry count and fetches immediately.
func (v *ListView) Retry(ctx context.Context) QueryResult[Property] {
	v.loader.Retry(ctx)
	return v.Result()
}

// State returns the loader snapshot including retry bookkeeping.
func (v *ListView) State() loader.State[QueryResult[Property]] {
	return v.loader.State()
}

// Result returns the latest rows, or the error when the last fetch failed.
func (v *ListView) Result() QueryResult[Property] {
	st := v.loader.State()
	if st.Error != "" {
		return QueryResult[Property]{Rows: []Property{}, Error: st.Error}
	}
	return st.Data
}

// Close stops the view. Late completions are ignored.
func (v *ListView) Close() {
	v.loader.Close()
}
