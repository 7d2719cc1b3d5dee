package store

import "context"

// Result is the outcome of a Query: the matched rows and the exact number
// of rows matching the predicates before Limit and Offset were applied.
type Result struct {
	Rows  []Row
	Count int
}

// Client is the remote structured-query store consumed by the domain
// services. Implementations return *Error for store-side failures.
type Client interface {
	Query(ctx context.Context, q Query) (Result, error)
	Insert(ctx context.Context, collection string, row Row) (Row, error)
	Update(ctx context.Context, collection string, patch Row, match []Predicate) ([]Row, error)
	Delete(ctx context.Context, collection string, match []Predicate) error
}
