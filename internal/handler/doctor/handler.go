package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/handler"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	doctorService "github.com/medagenda/agenda-api/internal/service/doctor"
	"github.com/medagenda/agenda-api/pkg/logger"
)

type Handler struct {
	service    doctorService.DoctorServicer
	outboxRepo repository.OutboxRepository
	logger     *logger.Logger
}

func NewHandler(service doctorService.DoctorServicer, outboxRepo repository.OutboxRepository, logger *logger.Logger) *Handler {
	return &Handler{
		service:    service,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.RegisterDoctor)
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.PUT("/:id/availability", h.UpdateAvailability)
		doctors.DELETE("/:id", h.DeleteDoctor)
	}
}

func (h *Handler) RegisterDoctor(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	var req model.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctor, err := h.service.RegisterDoctor(c.Request.Context(), clinicID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventDoctorRegistered, doctor)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	doctors, err := h.service.ListDoctors(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), clinicID, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) UpdateAvailability(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	doctor, err := h.service.UpdateAvailability(c.Request.Context(), clinicID, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventAvailabilityUpdated, doctor)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	clinicID, ok := middleware.ClinicID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("missing clinic scope"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	if err := h.service.DeleteDoctor(c.Request.Context(), clinicID, id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
