package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is the fixed counting window
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 60
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 24 * time.Hour
)

// ClientIP returns the caller's IP, trusting X-Forwarded-For when the
// server sits behind a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit is a Redis-backed fixed-window per-IP limiter that blocks
// abusive IPs for 24 hours. Fails open when Redis is unavailable.
func RateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := ClientIP(r)

			blocked, err := client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
			if err == nil && blocked > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"message":"Your IP has been temporarily blocked due to excessive requests. Please try again later."}`))
				return
			}

			key := RateLimitKeyPrefix + ip
			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				// Redis down: let the request through
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, RateLimitWindow)
			}

			if count > RateLimitMaxRequests {
				client.Set(ctx, BlockedIPKeyPrefix+ip, "1", BlockedIPDuration)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"Rate limit exceeded. Your IP has been temporarily blocked.","retry_after":%d}`, int(RateLimitWindow.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(RateLimitMaxRequests-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
