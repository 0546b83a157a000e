package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medagenda/agenda-api/pkg/logger"
)

// Logger logs every request with its latency and outcome.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"request_id": c.GetString(ContextRequestID),
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if clinicID := c.GetString(ContextClinicID); clinicID != "" {
			fields["clinic_id"] = clinicID
		}

		entry := log.WithFields(fields)
		switch {
		case status >= 500:
			entry.Error(nil, "request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request processed")
		}
	}
}
