package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/handler"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	appointmentService "github.com/medagenda/agenda-api/internal/service/appointment"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
	"github.com/medagenda/agenda-api/pkg/logger"
	"github.com/medagenda/agenda-api/pkg/metrics"
)

type Handler struct {
	service    appointmentService.AppointmentServicer
	outboxRepo repository.OutboxRepository
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewHandler(service appointmentService.AppointmentServicer, outboxRepo repository.OutboxRepository, logger *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:    service,
		outboxRepo: outboxRepo,
		logger:     logger,
		metrics:    metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	appt, err := h.service.BookAppointment(c.Request.Context(), clinicID, doctorID, patientID, req.Date)
	if err != nil {
		h.metrics.BookingRejections.WithLabelValues(rejectionReason(err)).Inc()
		handler.Error(c, err)
		return
	}

	h.metrics.AppointmentsBooked.Inc()
	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventAppointmentBooked, appt)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appt))
}

// ListAppointments supports optional doctor_id, patient_id, from and to
// query filters. from/to are RFC 3339 timestamps.
func (h *Handler) ListAppointments(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	filters := &model.AppointmentFilters{}
	if v := c.Query("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor_id filter"))
			return
		}
		filters.DoctorID = id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient_id filter"))
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid from filter"))
			return
		}
		filters.From = ts
	}
	if v := c.Query("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid to filter"))
			return
		}
		filters.To = ts
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), clinicID, filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	appt, err := h.service.GetAppointment(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appt, err := h.service.RescheduleAppointment(c.Request.Context(), clinicID, id, req.Date)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventAppointmentRescheduled, appt)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.service.CancelAppointment(c.Request.Context(), clinicID, id); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventAppointmentCancelled, gin.H{
		"appointment_id": id,
		"clinic_id":      clinicID,
	})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func rejectionReason(err error) string {
	switch apperrors.Code(err) {
	case apperrors.ErrSlotTaken:
		return "slot_taken"
	case apperrors.ErrOutOfAvailability:
		return "out_of_availability"
	case apperrors.ErrForbidden:
		return "cross_tenant"
	case apperrors.ErrNotFound:
		return "not_found"
	default:
		return "other"
	}
}
