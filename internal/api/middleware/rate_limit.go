package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/response"
)

// RateLimiter records a hit and reports whether key is still within limit.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit applies a sliding window per client IP and route.
// A nil limiter, or a failing one, lets requests through.
func RateLimit(limiter RateLimiter, limit int, window time.Duration, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP() + ":" + c.FullPath()
		allowed, err := limiter.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			m.RateLimited()
			c.Header("Retry-After", retryAfter(window))
			response.Error(c, http.StatusTooManyRequests, 42900, "too many requests, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return itoa(secs)
}
