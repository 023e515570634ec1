package sources

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces out external requests so repeated fetches do not hammer
// the remote service. The zero interval disables pacing entirely.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewRateLimiter returns a limiter enforcing the given minimum interval
// between Wait calls.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until the minimum interval since the previous request has
// elapsed, or until the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil || r.interval <= 0 {
		return nil
	}

	r.mu.Lock()
	now := time.Now()
	var delay time.Duration
	if !r.last.IsZero() {
		if elapsed := now.Sub(r.last); elapsed < r.interval {
			delay = r.interval - elapsed
		}
	}
	r.last = now.Add(delay)
	r.mu.Unlock()

	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
