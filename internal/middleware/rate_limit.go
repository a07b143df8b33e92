package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/redis"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/response"
)

// LoginRateLimit throttles login attempts per client IP with a Redis
// fixed-window counter. On Redis failure the request passes through;
// availability over strictness for an inner service.
func LoginRateLimit(client *redis.Client, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())

		count, err := client.IncrWithWindow(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("login rate limit check failed", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(limit) {
			response.TooManyRequests(c, "Too many login attempts, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
