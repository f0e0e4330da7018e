package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trackmyoffer/bff/internal/service"
	"go.uber.org/zap"
)

// ActivityMiddleware records a day of activity for the authenticated caller. A tracking
// failure is logged and never fails the request.
func ActivityMiddleware(tracker *service.ActivityTracker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if ok {
			streak, err := tracker.RecordActivity(c.Request.Context(), identity.Email)
			if err != nil {
				logger.Warn("failed to record activity", zap.String("email", identity.Email), zap.Error(err))
			} else {
				logger.Debug("activity recorded", zap.String("email", identity.Email), zap.Int("streak", streak))
			}
		}

		c.Next()
	}
}
