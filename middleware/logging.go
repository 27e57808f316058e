package middleware

import (
	"time"

	"coursegen/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zapcore"
)

// Logger writes one line per request through the structured logger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		log.Log(level, c.GetHeader(HeaderRequestID), "HTTP request", map[string]any{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    status,
			"latencyMs": time.Since(start).Milliseconds(),
			"clientIp":  c.ClientIP(),
		}, "HTTP", err)
	}
}
