package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
)

// Context keys set by the common middleware
const (
	// RequestIDContextKey holds the request correlation ID
	RequestIDContextKey = "request_id"
	// ClientIPContextKey holds the resolved client IP
	ClientIPContextKey = "client_ip"
	// UserAgentContextKey holds the request's user agent string
	UserAgentContextKey = "user_agent"
)

// RequestID adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set(RequestIDContextKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestMeta captures client IP and user agent into the request context so
// the audit recorder can attach them without reaching back into the request
func RequestMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ClientIPContextKey, c.ClientIP())
		c.Set(UserAgentContextKey, c.Request.UserAgent())
		c.Next()
	}
}

// GetRequestID retrieves the request ID from gin context
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDContextKey)
}

// GetClientIP retrieves the captured client IP from gin context
func GetClientIP(c *gin.Context) string {
	return c.GetString(ClientIPContextKey)
}

// GetUserAgent retrieves the captured user agent from gin context
func GetUserAgent(c *gin.Context) string {
	return c.GetString(UserAgentContextKey)
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp-based ID if crypto/rand fails
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(bytes)
}
