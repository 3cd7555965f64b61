package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/LouisaLyu/System-design-project-3/internal/database"
	"github.com/LouisaLyu/System-design-project-3/pkg/clientip"
)

const (
	// RateLimitWindow is the sliding window for per-IP counting
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// RateLimit provides simple Redis-backed per-IP rate limiting. When
// Redis is unavailable the request passes through rather than failing
// closed.
func RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if database.RedisClient == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.Background()
		key := RateLimitKeyPrefix + clientip.RealClientIP(r)

		count, err := database.RedisClient.Incr(ctx, key).Result()
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			database.RedisClient.Expire(ctx, key, RateLimitWindow)
		}

		if count > RateLimitMaxRequests {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}
