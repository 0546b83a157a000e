package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/agenda-api/internal/handler"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/repository"
	clinicService "github.com/medagenda/agenda-api/internal/service/clinic"
	"github.com/medagenda/agenda-api/internal/service/tenancy"
	"github.com/medagenda/agenda-api/pkg/logger"
)

type Handler struct {
	service    clinicService.ClinicServicer
	tenancySvc tenancy.TenancyServicer
	outboxRepo repository.OutboxRepository
	logger     *logger.Logger
}

func NewHandler(service clinicService.ClinicServicer, tenancySvc tenancy.TenancyServicer, outboxRepo repository.OutboxRepository, logger *logger.Logger) *Handler {
	return &Handler{
		service:    service,
		tenancySvc: tenancySvc,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// RegisterRoutes mounts the clinic lifecycle and membership routes.
// These are user-scoped, not clinic-scoped: the clinic being managed
// is named in the path, and membership endpoints administer the tenant
// itself.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.POST("", h.CreateClinic)
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
		clinics.PATCH("/:id", h.RenameClinic)
		clinics.DELETE("/:id", h.DeleteClinic)
		clinics.GET("/:id/members", h.ListMembers)
		clinics.POST("/:id/members", h.AddMember)
		clinics.DELETE("/:id/members/:userID", h.RemoveMember)
	}
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var req model.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	callerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authenticated user"))
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), callerID, req.Name)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventClinicCreated, clinic)
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clinic))
}

// ListClinics returns the clinics the caller belongs to.
func (h *Handler) ListClinics(c *gin.Context) {
	callerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authenticated user"))
		return
	}

	clinics, err := h.tenancySvc.ListClinicsForUser(c.Request.Context(), callerID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinics))
}

func (h *Handler) GetClinic(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) RenameClinic(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	var req model.RenameClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	clinic, err := h.service.RenameClinic(c.Request.Context(), clinicID, req.Name)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventClinicRenamed, clinic)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	if err := h.service.DeleteClinic(c.Request.Context(), clinicID); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Emit(c.Request.Context(), h.outboxRepo, h.logger, model.EventClinicDeleted, gin.H{"clinic_id": clinicID})
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListMembers(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	members, err := h.tenancySvc.ListMembersForClinic(c.Request.Context(), clinicID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(members))
}

func (h *Handler) AddMember(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	var req model.GrantAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.tenancySvc.GrantAccess(c.Request.Context(), userID, clinicID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(nil))
}

func (h *Handler) RemoveMember(c *gin.Context) {
	clinicID, ok := h.authorizedClinic(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	if err := h.tenancySvc.RevokeAccess(c.Request.Context(), userID, clinicID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// authorizedClinic parses the clinic from the path and checks the
// caller's membership. Clinic management routes authorize against the
// path parameter rather than the X-Clinic-ID header.
func (h *Handler) authorizedClinic(c *gin.Context) (uuid.UUID, bool) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
		return uuid.Nil, false
	}

	callerID, found := middleware.UserID(c)
	if !found {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authenticated user"))
		return uuid.Nil, false
	}

	if err := h.tenancySvc.Authorize(c.Request.Context(), callerID, clinicID); err != nil {
		handler.Error(c, err)
		return uuid.Nil, false
	}
	return clinicID, true
}
