package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nestly",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by collection, kind and outcome.",
		},
		[]string{"collection", "kind", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nestly",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Latency of store operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"collection", "kind"},
	)
)

// Instrumented records per-operation metrics for the wrapped client.
type Instrumented struct {
	next Client
}

// Instrument wraps c with operation metrics.
func Instrument(c Client) *Instrumented {
	return &Instrumented{next: c}
}

func (i *Instrumented) Query(ctx context.Context, q Query) (Result, error) {
	defer observe(q.Collection, "query", time.Now())
	res, err := i.next.Query(ctx, q)
	count(q.Collection, "query", err)
	return res, err
}

func (i *Instrumented) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	defer observe(collection, "insert", time.Now())
	out, err := i.next.Insert(ctx, collection, row)
	count(collection, "insert", err)
	return out, err
}

func (i *Instrumented) Update(ctx context.Context, collection string, patch Row, match []Predicate) ([]Row, error) {
	defer observe(collection, "update", time.Now())
	out, err := i.next.Update(ctx, collection, patch, match)
	count(collection, "update", err)
	return out, err
}

func (i *Instrumented) Delete(ctx context.Context, collection string, match []Predicate) error {
	defer observe(collection, "delete", time.Now())
	err := i.next.Delete(ctx, collection, match)
	count(collection, "delete", err)
	return err
}

func observe(collection, kind string, start time.Time) {
	operationDuration.WithLabelValues(collection, kind).Observe(time.Since(start).Seconds())
}

func count(collection, kind string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case IsUndefinedColumn(err):
		outcome = "schema_mismatch"
	default:
		outcome = "error"
	}
	operationsTotal.WithLabelValues(collection, kind, outcome).Inc()
}
