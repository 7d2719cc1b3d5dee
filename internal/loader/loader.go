// Package loader runs a fetch function and keeps the latest outcome as a
// state snapshot, retrying failed fetches on a backoff schedule.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rpggio/nestly/internal/retry"
	"github.com/rpggio/nestly/internal/store"
)

// Fetch loads the data a Loader holds.
type Fetch[T any] func(ctx context.Context) (T, error)

// State is a snapshot of a Loader.
type State[T any] struct {
	Data       T
	Error      string
	RetryCount int
	IsRetrying bool
	Loading    bool
	Loaded     bool
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	policy retry.Policy
	clock  retry.Clock
	logger *slog.Logger
}

// WithPolicy sets the retry policy. The default is retry.DefaultPolicy.
func WithPolicy(p retry.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithClock sets the clock retries are scheduled on.
func WithClock(c retry.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the logger for fetch failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Loader holds the result of the most recent fetch. Each Load supersedes
// the previous one: its in-flight fetch is cancelled, its scheduled retry
// is dropped, and its completion is ignored if it still arrives.
type Loader[T any] struct {
	name  string
	fetch Fetch[T]
	opts  options

	mu     sync.Mutex
	state  State[T]
	gen    uint64
	parent context.Context
	cancel context.CancelFunc
	timer  retry.Timer
	closed bool
}

// New creates a Loader. name labels its metrics and log lines.
func New[T any](name string, fetch Fetch[T], opts ...Option) *Loader[T] {
	o := options{
		policy: retry.DefaultPolicy(),
		clock:  retry.RealClock{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader[T]{name: name, fetch: fetch, opts: o}
}

// State returns the current snapshot.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Load fetches once and returns the resulting state. A failed fetch
// schedules a retry when the policy allows; Load does not wait for it.
func (l *Loader[T]) Load(ctx context.Context) State[T] {
	return l.start(ctx, false)
}

// Retry clears the retry count and error, drops any scheduled retry, and
// fetches immediately.
func (l *Loader[T]) Retry(ctx context.Context) State[T] {
	return l.start(ctx, true)
}

// Close cancels the in-flight fetch and any scheduled retry. Later
// completions are ignored and further loads are no-ops.
func (l *Loader[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.gen++
	l.abortLocked()
	l.state.Loading = false
	l.state.IsRetrying = false
}

func (l *Loader[T]) start(ctx context.Context, reset bool) State[T] {
	l.mu.Lock()
	if l.closed {
		defer l.mu.Unlock()
		return l.state
	}
	l.gen++
	gen := l.gen
	l.abortLocked()
	if reset {
		l.state.RetryCount = 0
		l.state.Error = ""
	}
	l.state.IsRetrying = false
	l.state.Loading = true
	// Scheduled retries outlive the caller's request.
	l.parent = context.WithoutCancel(ctx)
	actx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	l.attempt(actx, gen)
	return l.State()
}

// abortLocked cancels the in-flight fetch and the scheduled retry.
func (l *Loader[T]) abortLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Loader[T]) attempt(ctx context.Context, gen uint64) {
	data, err := l.fetch(ctx)
	abandoned := err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.gen {
		staleDiscarded.WithLabelValues(l.name).Inc()
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.state.Loading = false

	if err == nil {
		attemptsTotal.WithLabelValues(l.name, "ok").Inc()
		l.state.Data = data
		l.state.Error = ""
		l.state.RetryCount = 0
		l.state.IsRetrying = false
		l.state.Loaded = true
		return
	}

	// The caller gave up on this load; there's nobody to retry for.
	if abandoned {
		attemptsTotal.WithLabelValues(l.name, "cancelled").Inc()
		return
	}

	attemptsTotal.WithLabelValues(l.name, "error").Inc()
	l.state.Error = store.Message(err)

	if !l.opts.policy.ShouldRetry(l.state.RetryCount) {
		l.state.IsRetrying = false
		l.opts.logger.Warn("fetch failed, retries exhausted",
			"loader", l.name, "retries", l.state.RetryCount, "error", err)
		return
	}

	delay := l.opts.policy.NextDelay(l.state.RetryCount)
	l.state.RetryCount++
	l.state.IsRetrying = true
	retriesScheduled.WithLabelValues(l.name).Inc()
	l.opts.logger.Warn("fetch failed, retry scheduled",
		"loader", l.name, "retry", l.state.RetryCount, "delay", delay, "error", err)

	l.timer = l.opts.clock.AfterFunc(delay, func() { l.fire(gen) })
}

func (l *Loader[T]) fire(gen uint64) {
	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.timer = nil
	l.state.Loading = true
	actx, cancel := context.WithCancel(l.parent)
	l.cancel = cancel
	l.mu.Unlock()

	l.attempt(actx, gen)
}
