package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(5*time.Minute, 5, WithClock(clock.Now)), clock
}

func TestAdmit_SixthAttemptDenied(t *testing.T) {
	l, clock := newLimiter()

	for i := 1; i <= 5; i++ {
		d := l.Admit("10.0.0.1")
		require.Truef(t, d.Allowed, "attempt %d", i)
		assert.Equal(t, 5-i, d.Remaining)
		clock.Advance(10 * time.Second)
	}

	d := l.Admit("10.0.0.1")
	assert.False(t, d.Allowed)
	assert.Equal(t, 5*time.Minute-50*time.Second, d.RetryAfter)
	assert.Zero(t, d.Remaining)
}

func TestAdmit_WindowReset(t *testing.T) {
	l, clock := newLimiter()

	for range 6 {
		l.Admit("10.0.0.1")
	}
	require.False(t, l.Admit("10.0.0.1").Allowed)

	clock.Advance(5*time.Minute - time.Nanosecond)
	assert.False(t, l.Admit("10.0.0.1").Allowed)

	clock.Advance(time.Nanosecond)
	d := l.Admit("10.0.0.1")
	assert.True(t, d.Allowed)
	assert.Equal(t, 4, d.Remaining)
}

func TestAdmit_AddressesAreIndependent(t *testing.T) {
	l, _ := newLimiter()

	for range 5 {
		require.True(t, l.Admit("10.0.0.1").Allowed)
	}
	assert.False(t, l.Admit("10.0.0.1").Allowed)
	assert.True(t, l.Admit("10.0.0.2").Allowed)
}

func TestAdmit_DeniedAttemptsDoNotExtendWindow(t *testing.T) {
	l, clock := newLimiter()

	for range 5 {
		l.Admit("a")
	}
	clock.Advance(4 * time.Minute)
	d := l.Admit("a")
	require.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)

	clock.Advance(time.Minute)
	assert.True(t, l.Admit("a").Allowed)
}

func TestSweep(t *testing.T) {
	l, clock := newLimiter()

	l.Admit("old")
	clock.Advance(3 * time.Minute)
	l.Admit("new")
	require.Equal(t, 2, l.Len())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Equal(t, 1, l.Len())

	clock.Advance(3 * time.Minute)
	assert.Equal(t, 1, l.Sweep())
	assert.Zero(t, l.Len())
}

func TestAdmit_Concurrent(t *testing.T) {
	l, _ := newLimiter()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Admit("shared").Allowed {
				allowed.Add(1)
			}
			l.Admit(fmt.Sprintf("solo-%d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
	assert.Equal(t, 51, l.Len())
}
