package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medagenda/agenda-api/internal/handler"
	"github.com/medagenda/agenda-api/internal/service/tenancy"
	apperrors "github.com/medagenda/agenda-api/pkg/errors"
)

const (
	HeaderXClinicID = "X-Clinic-ID"
	ContextClinicID = "clinicID"
)

// TenancyMiddleware scopes clinic-bound routes to the clinic named in
// the X-Clinic-ID header and rejects callers without a membership.
// Positive authorization results are cached briefly so hot callers do
// not hit the memberships table on every request; revocation takes
// effect when the entry expires.
type TenancyMiddleware struct {
	tenancySvc tenancy.TenancyServicer
	cache      *gocache.Cache
}

func NewTenancyMiddleware(tenancySvc tenancy.TenancyServicer, ttl time.Duration) *TenancyMiddleware {
	return &TenancyMiddleware{
		tenancySvc: tenancySvc,
		cache:      gocache.New(ttl, 2*ttl),
	}
}

func (m *TenancyMiddleware) RequireClinicAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authenticated user"))
			c.Abort()
			return
		}

		header := c.GetHeader(HeaderXClinicID)
		if header == "" {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("clinic ID header is required"))
			c.Abort()
			return
		}

		clinicID, err := uuid.Parse(header)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
			c.Abort()
			return
		}

		cacheKey := fmt.Sprintf("%s:%s", userID, clinicID)
		if _, found := m.cache.Get(cacheKey); !found {
			if err := m.tenancySvc.Authorize(c.Request.Context(), userID, clinicID); err != nil {
				c.JSON(apperrors.HTTPStatus(err), handler.NewErrorResponse(err.Error()))
				c.Abort()
				return
			}
			m.cache.SetDefault(cacheKey, struct{}{})
		}

		c.Set(ContextClinicID, clinicID.String())
		c.Next()
	}
}

// ClinicID returns the authorized clinic scope from the context.
func ClinicID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(ContextClinicID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
