// Package ratelimit implements a fixed-window admission counter keyed by
// client address.
//
// Every call to Admit counts, whether the caller later succeeds or not. A
// burst straddling a window boundary can see up to twice the limit in a short
// span; this is accepted.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	// RetryAfter is the time left in the current window when denied.
	RetryAfter time.Duration
	// Remaining is how many more attempts the window allows.
	Remaining int
}

type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter is safe for concurrent use. State lives for the process lifetime.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	window  time.Duration
	max     int
	now     func() time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New admits at most max attempts per address in each window.
func New(window time.Duration, max int, opts ...Option) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		window:  window,
		max:     max,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit records an attempt from addr and reports whether it may proceed.
func (l *Limiter) Admit(addr string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[addr]
	if !ok || !now.Before(b.windowStart.Add(l.window)) {
		b = &bucket{windowStart: now}
		l.buckets[addr] = b
	}

	if b.count >= l.max {
		// keep the count bounded; further attempts change nothing
		b.count = l.max + 1
		return Decision{
			Allowed:    false,
			RetryAfter: b.windowStart.Add(l.window).Sub(now),
		}
	}

	b.count++
	return Decision{Allowed: true, Remaining: l.max - b.count}
}

// Sweep drops buckets whose window has elapsed and returns how many were
// removed. Admit resets stale buckets on its own; Sweep only bounds memory.
func (l *Limiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for addr, b := range l.buckets {
		if !now.Before(b.windowStart.Add(l.window)) {
			delete(l.buckets, addr)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked addresses.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
