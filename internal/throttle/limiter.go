// Package throttle provides the shared request limiter every outbound archive
// call funnels through: CDX index queries and archived-page fetches alike.
package throttle

import (
	"sync"
	"time"
)

// Limiter is a token bucket sized to the configured request rate. The bucket
// starts full, permitting an initial burst of up to rate requests; once
// drained, each Acquire reserves the next refill slot and sleeps until it,
// earning exactly one token, so sustained throughput converges to rate per
// second no matter how many callers share the limiter.
type Limiter struct {
	mu       sync.Mutex
	tokens   float64
	rate     float64
	interval time.Duration
	nextFree time.Time

	// now and sleep are swappable in tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter creates a limiter allowing rate requests per second. Rates below
// 1 are rounded up to keep the bucket usable.
func NewLimiter(rate float64) *Limiter {
	if rate < 1 {
		rate = 1
	}
	return &Limiter{
		tokens:   rate,
		rate:     rate,
		interval: time.Duration(float64(time.Second) / rate),
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Acquire consumes one token, sleeping until the next refill slot if the
// bucket is empty. Refill slots are reserved while the mutex is held, one
// interval apart, so N starved callers wait for N distinct instants instead
// of all sleeping the same interval in parallel and overshooting the rate.
func (l *Limiter) Acquire() {
	l.mu.Lock()
	if l.tokens >= 1 {
		l.tokens--
		l.mu.Unlock()
		return
	}

	now := l.now()
	if l.nextFree.Before(now) {
		l.nextFree = now
	}
	l.nextFree = l.nextFree.Add(l.interval)
	wait := l.nextFree.Sub(now)
	l.mu.Unlock()

	// The wait earns exactly one token, which this caller consumes.
	l.sleep(wait)
}

// Tokens reports the remaining burst capacity.
func (l *Limiter) Tokens() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tokens
}
