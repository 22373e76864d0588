package middleware

import (
	"time"

	"github.com/accounts-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the key for the request ID in gin context
const ContextKeyRequestID = "request_id"

// RequestHeaderID is the header carrying the request ID in responses
const RequestHeaderID = "X-Request-ID"

// RequestID tags every request with a UUID. Incoming X-Request-ID values are
// kept so callers can correlate across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestHeaderID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, id)
		c.Writer.Header().Set(RequestHeaderID, id)
		c.Next()
	}
}

// GetRequestID gets the request ID from the gin context
func GetRequestID(c *gin.Context) string {
	id, exists := c.Get(ContextKeyRequestID)
	if !exists {
		return ""
	}
	return id.(string)
}

// RequestLogger logs all incoming requests through the injected logger.
// Log format: METHOD URL | status | latency | request_id
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		// Build full URL
		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		requestID := GetRequestID(c)

		if statusCode >= 400 {
			log.Error("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		} else {
			log.Info("%s %s | status=%d | latency=%v | request_id=%s",
				c.Request.Method, fullURL, statusCode, latency, requestID)
		}
	}
}
