package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pagecrafter/internal/metrics"
	"pagecrafter/internal/port"
)

// RateLimit rejects requests over the limiter's budget with 429 and a
// Retry-After header. Requests are keyed by user when authenticated and by
// client IP otherwise. Limiter failures let the request through.
func RateLimit(limiter port.RateLimiter, scope string, style ErrorStyle, log *zap.Logger) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := scope + ":ip:" + c.ClientIP()
		if userID, err := GetUserID(c); err == nil {
			key = scope + ":user:" + userID.String()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			log.Warn("rate limiter unavailable, allowing request", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !decision.Allowed {
			metrics.RateLimitRejections.Inc()
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			abortError(c, style, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded, please retry later")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
