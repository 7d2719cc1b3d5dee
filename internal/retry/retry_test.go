package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_NextDelay(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, 1*time.Second, p.NextDelay(0))
	assert.Equal(t, 2*time.Second, p.NextDelay(1))
	assert.Equal(t, 4*time.Second, p.NextDelay(2))
	assert.Equal(t, 8*time.Second, p.NextDelay(3))
	assert.Equal(t, 1*time.Second, p.NextDelay(-1))

	custom := Policy{MaxRetries: 5, BaseDelay: 250 * time.Millisecond}
	assert.Equal(t, time.Second, custom.NextDelay(2))
}

func TestPolicy_ShouldRetry(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.ShouldRetry(0))
	assert.True(t, p.ShouldRetry(2))
	assert.False(t, p.ShouldRetry(3))

	assert.False(t, Policy{}.ShouldRetry(0))
}

func TestManualClock_FiresInOrder(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "a") })
	stopped := c.AfterFunc(time.Second, func() { fired = append(fired, "never") })
	require.True(t, stopped.Stop())
	require.False(t, stopped.Stop())

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, fired)
	assert.Equal(t, 2, c.Pending())

	d, ok := c.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, 500*time.Millisecond, d)

	c.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, start.Add(2500*time.Millisecond), c.Now())
	assert.Zero(t, c.Pending())
}

func TestManualClock_ChainedTimers(t *testing.T) {
	c := NewManualClock(time.Time{})

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}
