package property

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpggio/nestly/internal/store"
)

var fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nestly_query_fallbacks_total",
	Help: "Property queries re-issued without the visibility predicate.",
}, []string{"query"})

// Service handles property reads.
type Service struct {
	client store.Client
	logger *slog.Logger
}

// NewService creates a new property service.
func NewService(client store.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, logger: logger}
}

// List returns every listing matching criteria with the exact count.
func (s *Service) List(ctx context.Context, c FilterCriteria) (QueryResult[Property], error) {
	return s.page(ctx, "list", BuildQuery(c))
}

// Featured returns the newest featured listings.
func (s *Service) Featured(ctx context.Context, limit int) (QueryResult[Property], error) {
	featured := true
	return s.page(ctx, "featured", BuildQuery(FilterCriteria{Featured: &featured}).Take(limit))
}

// ByAgent returns the newest listings handled by an agent.
func (s *Service) ByAgent(ctx context.Context, agentID string, limit int) (QueryResult[Property], error) {
	if strings.TrimSpace(agentID) == "" {
		return QueryResult[Property]{Error: ErrInvalidInput.Error()}, ErrInvalidInput
	}
	q := BuildQuery(FilterCriteria{}).Filter(store.Eq("agent_id", agentID)).Take(limit)
	return s.page(ctx, "by_agent", q)
}

// Get fetches a single visible listing.
func (s *Service) Get(ctx context.Context, id string) (*Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	q := store.From(Collection).Filter(Visibility(), store.Eq("id", id)).Take(1)
	res, err := s.query(ctx, "get", q)
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", err)
	}
	if len(res.Rows) == 0 {
		return nil, ErrNotFound
	}
	p := FromRow(res.Rows[0])
	return &p, nil
}

func (s *Service) page(ctx context.Context, name string, q store.Query) (QueryResult[Property], error) {
	res, err := s.query(ctx, name, q)
	if err != nil {
		return QueryResult[Property]{Error: store.Message(err)}, err
	}
	out := QueryResult[Property]{Rows: make([]Property, 0, len(res.Rows)), TotalCount: res.Count}
	for _, row := range res.Rows {
		out.Rows = append(out.Rows, FromRow(row))
	}
	return out, nil
}

// query runs q, re-issuing it once without the visibility predicate when
// the store lacks one of its columns.
func (s *Service) query(ctx context.Context, name string, q store.Query) (store.Result, error) {
	res, err := s.client.Query(ctx, q)
	if err == nil || !store.IsUndefinedColumn(err) {
		return res, err
	}

	fallbacksTotal.WithLabelValues(name).Inc()
	s.logger.Warn("visibility columns missing, querying without visibility filter",
		"query", name, "error", err)
	return s.client.Query(ctx, WithoutVisibility(q))
}
