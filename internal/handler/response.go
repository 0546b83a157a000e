package handler

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
	"github.com/medagenda/agenda-api/pkg/logger"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Error writes the JSON error response for a service error, mapping
// its code to an HTTP status.
func Error(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), NewErrorResponse(err.Error()))
}

// Emit enqueues a domain event in the outbox. Enqueue failures are
// logged, not surfaced: the state change already committed and the
// response must reflect that.
func Emit(ctx context.Context, outboxRepo repository.OutboxRepository, log *logger.Logger, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error(err, "failed to marshal event payload", "event_type", eventType)
		return
	}
	if err := outboxRepo.Create(ctx, &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		log.Error(err, "failed to enqueue event", "event_type", eventType)
	}
}
