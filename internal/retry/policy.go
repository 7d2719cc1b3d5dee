// Package retry holds the backoff policy shared by loaders and the clock
// their retries are scheduled on.
package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxRetries is the number of scheduled retries after a failed fetch.
	DefaultMaxRetries = 3
	// DefaultBaseDelay is the delay before the first retry.
	DefaultBaseDelay = time.Second
)

// Policy is an exponential backoff policy without jitter.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// ShouldRetry reports whether another retry may be scheduled after
// retryCount retries have already been scheduled.
func (p Policy) ShouldRetry(retryCount int) bool {
	return retryCount < p.MaxRetries
}

// NextDelay returns BaseDelay * 2^attempt.
func (p Policy) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	b := p.backOff()
	d := b.NextBackOff()
	for i := 0; i < attempt && d != backoff.Stop; i++ {
		d = b.NextBackOff()
	}
	return d
}

func (p Policy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = time.Duration(math.MaxInt64)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}
