package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meditrack/meditrack-backend/pkg/logger"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// LoggingMiddleware tags the request with an id, stores a request-scoped
// logger for handlers and logs the outcome once the chain returns.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
		})

		log.Debug("Incoming request", map[string]interface{}{
			"user_agent": c.Request.UserAgent(),
		})

		c.Set(loggerKey, log)

		c.Next()

		status := c.Writer.Status()
		fields := logger.Fields{
			"status":     status,
			"latency_ms": time.Since(startTime).Milliseconds(),
			"bytes":      c.Writer.Size(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			log.Error("Request failed", nil, fields)
		case status >= 400:
			log.Warn("Request rejected", fields)
		default:
			log.Info("Request completed", fields)
		}
	}
}

// GetLoggerFromContext falls back to the process logger outside LoggingMiddleware.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if log, exists := c.Get(loggerKey); exists {
		if l, ok := log.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
