package handler

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/dto"
	"github.com/trackmyoffer/bff/internal/service"
	"github.com/trackmyoffer/bff/pkg/observability"
	"go.uber.org/zap"
)

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(
	rateLimiter *service.RateLimiter,
	limit int,
	window time.Duration,
	keyFunc func(*gin.Context) string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			c.Next()
			return
		}

		allowed, retryAfter, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis trouble must not take the feature routes down with it.
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))

		if !allowed {
			if metrics != nil {
				metrics.RateLimitRejected.Add(c.Request.Context(), 1)
			}
			seconds := int(math.Ceil(retryAfter.Seconds()))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(seconds))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: fmt.Sprintf("rate limit exceeded, try again in %ds", seconds),
			})
			return
		}

		remaining, err := rateLimiter.GetRemainingRequests(c.Request.Context(), key, limit, window)
		if err == nil {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		c.Next()
	}
}

// ProfileKey keys the limit on the caller's profile. Requests without an identity get no
// key and are not limited.
func ProfileKey(c *gin.Context) string {
	identity, ok := CurrentIdentity(c)
	if !ok {
		return ""
	}
	return "profile:" + strconv.FormatInt(identity.ProfileID, 10)
}
