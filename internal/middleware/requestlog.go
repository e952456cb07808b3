package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/santa-api/internal/logger"
)

// RequestLogger logs every request with a generated request ID, method,
// path, status and latency.
func RequestLogger() gin.HandlerFunc {
	httpLog := logger.HTTP()

	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := generateRequestID()
		c.Set("request_id", requestID)

		c.Next()

		latency := time.Since(startTime)
		status := c.Writer.Status()

		logFn := httpLog.Info
		if status >= 500 {
			logFn = httpLog.Error
		} else if status >= 400 {
			logFn = httpLog.Warn
		}

		logFn("Request completed",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", latency,
			"remote_addr", c.ClientIP(),
			"size", c.Writer.Size(),
		)
	}
}

// generateRequestID creates a simple request ID for tracing
func generateRequestID() string {
	return fmt.Sprintf("req_%d", time.Now().UnixNano())
}
