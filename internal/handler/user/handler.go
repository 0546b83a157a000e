package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medagenda/agenda-api/internal/handler"
	"github.com/medagenda/agenda-api/internal/service/tenancy"
	"github.com/medagenda/agenda-api/pkg/auth"
)

type Handler struct {
	tenancySvc tenancy.TenancyServicer
	jwtService auth.JWTService
}

func NewHandler(tenancySvc tenancy.TenancyServicer, jwtService auth.JWTService) *Handler {
	return &Handler{
		tenancySvc: tenancySvc,
		jwtService: jwtService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/users", h.CreateUser)
}

// CreateUser bootstraps a principal row and returns a token for it so
// the caller can immediately create a clinic. Credential handling
// belongs to the upstream identity provider.
func (h *Handler) CreateUser(c *gin.Context) {
	user, err := h.tenancySvc.CreateUser(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(gin.H{
		"user":  user,
		"token": token,
	}))
}
