package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medagenda/agenda-api/internal/handler/health"
	userhandler "github.com/medagenda/agenda-api/internal/handler/user"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/internal/service/tenancy"
	"github.com/medagenda/agenda-api/pkg/auth"
	"github.com/medagenda/agenda-api/pkg/logger"
)

var _ tenancy.TenancyServicer = stubTenancyService{}

type stubTenancyService struct{}

func (stubTenancyService) CreateUser(ctx context.Context) (*model.User, error) {
	return &model.User{ID: uuid.New()}, nil
}
func (stubTenancyService) GrantAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	return nil
}
func (stubTenancyService) RevokeAccess(ctx context.Context, userID, clinicID uuid.UUID) error {
	return nil
}
func (stubTenancyService) ListClinicsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Clinic, error) {
	return nil, nil
}
func (stubTenancyService) ListMembersForClinic(ctx context.Context, clinicID uuid.UUID) ([]*model.UserClinicMembership, error) {
	return nil, nil
}
func (stubTenancyService) Authorize(ctx context.Context, callerID, clinicID uuid.UUID) error {
	return nil
}

type stubHandler struct{ path string }

func (s stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(s.path, func(c *gin.Context) { c.Status(http.StatusOK) })
}

// TestRouterAuthBoundaries pins down which route groups sit behind the
// token check. In particular POST /users must stay open: it is the
// bootstrap endpoint that creates the first principal and hands back
// its token, so no caller can have a token before calling it.
func TestRouterAuthBoundaries(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour, "agenda-api")
	tenancySvc := stubTenancyService{}
	log := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: io.Discard})

	r := NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		middleware.NewTenancyMiddleware(tenancySvc, 30*time.Second),
		userhandler.NewHandler(tenancySvc, jwtSvc),
		stubHandler{path: "/clinics"},
		stubHandler{path: "/doctors"},
		stubHandler{path: "/patients"},
		stubHandler{path: "/appointments"},
		health.NewHandler(nil),
		log,
		Config{
			Timeout:       5 * time.Second,
			MetricsPrefix: "agenda_router_test",
			ServiceName:   "agenda-api-test",
		},
	)
	r.Setup()

	token, err := jwtSvc.GenerateToken(uuid.New())
	require.NoError(t, err)

	do := func(method, path string, header map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for k, v := range header {
			req.Header.Set(k, v)
		}
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, req)
		return w
	}

	t.Run("user bootstrap needs no token", func(t *testing.T) {
		w := do(http.MethodPost, "/api/v1/users", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("clinic routes reject anonymous callers", func(t *testing.T) {
		w := do(http.MethodGet, "/api/v1/clinics", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("clinic routes accept a bearer token", func(t *testing.T) {
		w := do(http.MethodGet, "/api/v1/clinics", map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("scoped routes require the clinic header", func(t *testing.T) {
		w := do(http.MethodGet, "/api/v1/doctors", map[string]string{
			"Authorization": "Bearer " + token,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scoped routes pass with token and clinic scope", func(t *testing.T) {
		w := do(http.MethodGet, "/api/v1/doctors", map[string]string{
			"Authorization":            "Bearer " + token,
			middleware.HeaderXClinicID: uuid.New().String(),
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("liveness needs no token", func(t *testing.T) {
		w := do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
