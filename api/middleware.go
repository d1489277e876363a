package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)

		if len(id) == 0 || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set("requestId", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each request once it completes, with the errors handlers
// attached to the context.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"requestId", c.GetString("requestId"),
		}

		if len(c.Errors) != 0 {
			logger.Warn("request failed", append(attrs, "err", c.Errors.String())...)
			return
		}

		logger.Info("request handled", attrs...)
	}
}
