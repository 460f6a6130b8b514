package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hogar/internal/logger"
	"hogar/internal/metrics"
)

// RequestIDKey holds the per-request id in the gin context.
const RequestIDKey = "requestID"

// RequestLogging logs each request with a request ID, the caller, status
// and latency, and records the latency histogram.
func RequestLogging() gin.HandlerFunc {
	log := logger.For("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(latency.Seconds())

		log.Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"user_id", c.GetString(UserIDKey),
			"client_ip", c.ClientIP(),
		)
	}
}
