package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles credential endpoints per IP with an in-memory
// token bucket, separate from the global Redis limiter so brute-force
// attempts hit a much tighter budget.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*loginEntry
	rate     rate.Limit
	burst    int
}

type loginEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLoginLimiter allows roughly perMinute attempts per minute per IP.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*loginEntry),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

func (l *LoginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &loginEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = time.Now()

	// Prune stale entries so the map doesn't grow unbounded.
	if len(l.limiters) > 10000 {
		cutoff := time.Now().Add(-time.Hour)
		for key, e := range l.limiters {
			if e.lastSeen.Before(cutoff) {
				delete(l.limiters, key)
			}
		}
	}
	return entry.limiter.Allow()
}

// Middleware rejects over-limit login attempts with 429.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(ClientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many attempts. Please wait a minute and try again."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
