package mw

import (
	"time"

	"github.com/gin-gonic/gin"

	"crew-booking-backend/internal/logger"
	"crew-booking-backend/internal/metrics"
)

var log = logger.New("http")

// AccessLog logs every request and records its latency.
func AccessLog(rec metrics.Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		rec.ObserveHTTP(c.Request.Method, route, status, elapsed)

		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": elapsed.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		log.Infow("request", fields)
	}
}
