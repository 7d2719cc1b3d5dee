package mocks

import (
	"context"

	"github.com/rpggio/nestly/internal/store"
	"github.com/stretchr/testify/mock"
)

// Client is a mock for store.Client.
type Client struct {
	mock.Mock
}

func (m *Client) Query(ctx context.Context, q store.Query) (store.Result, error) {
	args := m.Called(ctx, q)
	if res, ok := args.Get(0).(store.Result); ok {
		return res, args.Error(1)
	}
	return store.Result{}, args.Error(1)
}

func (m *Client) Insert(ctx context.Context, collection string, row store.Row) (store.Row, error) {
	args := m.Called(ctx, collection, row)
	if out, ok := args.Get(0).(store.Row); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Update(ctx context.Context, collection string, patch store.Row, match []store.Predicate) ([]store.Row, error) {
	args := m.Called(ctx, collection, patch, match)
	if rows, ok := args.Get(0).([]store.Row); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Delete(ctx context.Context, collection string, match []store.Predicate) error {
	args := m.Called(ctx, collection, match)
	return args.Error(0)
}

// QueryOn matches a Query against the given collection, whatever its
// predicates.
func QueryOn(collection string) any {
	return mock.MatchedBy(func(q store.Query) bool { return q.Collection == collection })
}
