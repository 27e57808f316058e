package middleware

import (
	"fmt"
	"net/http"
	"time"

	"coursegen/logger"
	"coursegen/model"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap/zapcore"
)

type RateLimiter struct {
	redisClient *redis.Client
	logger      *logger.Logger
}

func NewRateLimiter(client *redis.Client, log *logger.Logger) *RateLimiter {
	return &RateLimiter{redisClient: client, logger: log}
}

// Limit allows limit requests per window for each user (or client IP when
// anonymous). Redis failures let the request through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		who := SessionFrom(c).UserID
		if who == "" {
			who = c.ClientIP()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, who)
		ctx := c.Request.Context()

		count, err := rl.redisClient.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Log(zapcore.WarnLevel, c.GetHeader(HeaderRequestID), "Rate limiter unavailable", map[string]any{
				"key": key,
			}, "HTTP", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.redisClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			ttl, _ := rl.redisClient.TTL(ctx, key).Result()
			c.Header("Retry-After", fmt.Sprintf("%.0f", ttl.Seconds()))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.GenericResponse{
				Success: false,
				Status:  http.StatusTooManyRequests,
				Error: &model.ErrorInfo{
					ErrorType: "RATE_LIMITED",
					Code:      http.StatusTooManyRequests,
					Message:   "Too many requests",
					Details:   fmt.Sprintf("retry after %.0f seconds", ttl.Seconds()),
					Retryable: true,
				},
			})
			return
		}
		c.Next()
	}
}
