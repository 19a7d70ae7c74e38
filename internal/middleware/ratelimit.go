package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/landing-backend/internal/services"
	"github.com/AnshRaj112/landing-backend/pkg/clientip"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests per IP in one window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the store key prefix for rate limit counters
	RateLimitKeyPrefix = "ratelimit:"
)

// RateLimit is a fixed-window per-IP limiter over the shared store.
// Store failures let the request through.
func RateLimit(store services.KeyValueStore, max int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientip.LimiterKey(r)

			count, err := store.Incr(r.Context(), RateLimitKeyPrefix+ip, window)
			if err != nil {
				log.Printf("⚠️  rate limit store unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			if count > max {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"message":"Rate limit exceeded. Please try again later.","retry_after":%d}`, int(window.Seconds()))))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(max, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
