package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/medagenda/agenda-api/pkg/errors"
	"github.com/medagenda/agenda-api/pkg/logger"
)

// ErrorResponse is the error envelope returned by middleware.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler turns errors attached via c.Error into JSON responses
// with the status their error code maps to. Handlers that already
// wrote a response are left alone.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.WithFields(map[string]interface{}{
				"request_id": requestID,
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			}).Error(e.Err, "request error")
		}

		lastErr := c.Errors.Last()
		status := apperrors.HTTPStatus(lastErr.Err)
		c.JSON(status, ErrorResponse{
			Code:    status,
			Message: lastErr.Error(),
			TraceID: requestID,
		})
	}
}
