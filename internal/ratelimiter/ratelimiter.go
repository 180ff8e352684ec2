// Package ratelimiter throttles repeated requests per client using the
// token bucket algorithm from golang.org/x/time/rate.
//
// The primary consumer is the login endpoint, where a per-address limiter
// slows down credential guessing without affecting other clients. Buckets
// are created lazily per key and pruned after a period of inactivity so
// the map does not grow without bound.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneAfter is how long an idle bucket survives before it is dropped.
// A dropped bucket starts full again, which is acceptable for login
// throttling since the refill interval is far shorter than this window.
const pruneAfter = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed is a set of independent token buckets indexed by an arbitrary
// string key, typically a client IP address.
//
// All methods are safe for concurrent use.
type Keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	limit rate.Limit
	burst int
}

// NewKeyed creates a keyed limiter where each key gets its own bucket
// refilled at eventsPerSecond with the given burst capacity.
//
// Special cases:
//   - eventsPerSecond = 0: no limiting, every Allow call succeeds
func NewKeyed(eventsPerSecond float64, burst int) *Keyed {
	return &Keyed{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(eventsPerSecond),
		burst:   burst,
	}
}

// Allow reports whether the request identified by key may proceed,
// consuming one token from the key's bucket when it does.
//
// Returns true immediately when the limiter was created with rate 0.
func (k *Keyed) Allow(key string) bool {
	if k.limit == 0 {
		return true
	}

	now := time.Now()

	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
		k.prune(now)
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// Len returns the number of tracked keys. Useful for monitoring.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

// prune drops buckets idle for longer than pruneAfter.
// Caller must hold k.mu.
func (k *Keyed) prune(now time.Time) {
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > pruneAfter {
			delete(k.buckets, key)
		}
	}
}
