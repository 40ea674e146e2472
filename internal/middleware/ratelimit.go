// internal/middleware/ratelimit.go
//
// Per-client rate limiting for the no-login token endpoints.
//
// Context
// -------
// The confirm and rate links are followed without authentication, so the
// token itself is the only credential.  Limiting attempts per client IP
// makes brute-forcing a 43-character token impractical without affecting a
// legitimate host who fat-fingers a form twice.  One token bucket per key,
// pruned lazily so the map cannot grow without bound.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterIdleEvict = 10 * time.Minute

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per key (client IP here).
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows `perMinute` sustained requests per key with the
// given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

// Allow reports whether the key may proceed, consuming one token.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = time.Now()

	// Evict buckets idle past the window; done inline so no janitor
	// goroutine is needed.
	if len(rl.entries) > 1024 {
		cutoff := time.Now().Add(-limiterIdleEvict)
		for k, v := range rl.entries {
			if v.lastSeen.Before(cutoff) {
				delete(rl.entries, k)
			}
		}
	}
	return e.lim.Allow()
}

// Wrap rejects over-limit requests with 429 before they reach the handler.
func (rl *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			key = host
		}
		if !rl.Allow(key) {
			zap.S().Warnw("rate limited", "ip", key, "path", r.URL.Path)
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
