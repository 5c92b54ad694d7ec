package service

import (
	"sync"
	"time"
)

// RateLimiter is a per-identity fixed-window cooldown gate. It is an
// injected state holder, not package state, so tests get a fresh map.
// Entries are never evicted; the map grows with the distinct-user count.
type RateLimiter struct {
	window time.Duration

	mu   sync.Mutex
	last map[int64]time.Time
}

// NewRateLimiter creates a limiter with the given cooldown window.
func NewRateLimiter(window time.Duration) *RateLimiter {
	return &RateLimiter{
		window: window,
		last:   make(map[int64]time.Time),
	}
}

// CheckAndStamp admits the request and records now as the identity's
// last-request time, returning zero. When the identity is still inside the
// cooldown window it returns the remaining wait and leaves the stamp
// untouched, so a rejected request does not extend the cooldown.
func (r *RateLimiter) CheckAndStamp(id int64, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.last[id]; ok {
		if elapsed := now.Sub(last); elapsed < r.window {
			return r.window - elapsed
		}
	}

	r.last[id] = now
	return 0
}
