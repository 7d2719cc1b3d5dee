// Package mutation runs single-row writes and reports their outcome in a
// uniform shape.
package mutation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpggio/nestly/internal/store"
)

// genericFailure is reported when a write panics.
const genericFailure = "operation failed"

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nestly_mutations_total",
	Help: "Mutations by operation and outcome.",
}, []string{"operation", "outcome"})

// Result is the outcome of a write.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Option configures Run.
type Option func(*options)

type options struct {
	refetch func(context.Context)
	logger  *slog.Logger
}

// WithRefetch sets a hook run after a successful write, typically the
// owning view's reload.
func WithRefetch(f func(context.Context)) Option {
	return func(o *options) { o.refetch = f }
}

// WithLogger sets the logger failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Run executes write once. Failures are never retried. Store errors are
// reduced to a display message and panics to a generic failure.
func Run[T any](ctx context.Context, operation string, write func(context.Context) (T, error), opts ...Option) (res Result[T]) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			mutationsTotal.WithLabelValues(operation, "panic").Inc()
			o.logger.Error("mutation panicked", "operation", operation, "panic", fmt.Sprint(r))
			res = Result[T]{Error: genericFailure}
		}
	}()

	v, err := write(ctx)
	if err != nil {
		mutationsTotal.WithLabelValues(operation, "error").Inc()
		o.logger.Warn("mutation failed", "operation", operation, "error", err)
		msg := store.Message(err)
		if msg == "" {
			msg = genericFailure
		}
		return Result[T]{Error: msg}
	}

	mutationsTotal.WithLabelValues(operation, "ok").Inc()
	if o.refetch != nil {
		o.refetch(ctx)
	}
	return Result[T]{Success: true, Data: &v}
}
