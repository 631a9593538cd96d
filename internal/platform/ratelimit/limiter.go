package ratelimit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Limiter implements per-client rate limiting
type Limiter struct {
	limiters map[string]*client
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// NewLimiter creates a limiter allowing requestsPerSecond per client with
// the given burst. A zero rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters: make(map[string]*client),
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	if l.rate <= 0 {
		return true
	}
	return l.getLimiter(key).Allow()
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	now := l.now().UnixNano()

	l.mu.RLock()
	c, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		c.lastSeen.Store(now)
		return c.limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c, exists := l.limiters[key]; exists {
		c.lastSeen.Store(now)
		return c.limiter
	}

	c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
	c.lastSeen.Store(now)
	l.limiters[key] = c
	return c.limiter
}

// Sweep drops clients not seen for idle and returns how many were removed.
// A dropped client starts again with a full bucket.
func (l *Limiter) Sweep(idle time.Duration) int {
	cutoff := l.now().Add(-idle).UnixNano()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, c := range l.limiters {
		if c.lastSeen.Load() < cutoff {
			delete(l.limiters, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle clients every interval until ctx is cancelled.
func (l *Limiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(idle); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiter sweep")
			}
		}
	}
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.limiters)
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.Allow(key) {
			log.Warn().Str("client", key).Str("path", r.URL.Path).Msg("rate limit exceeded")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
