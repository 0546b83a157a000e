package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/medagenda/agenda-api/internal/handler/health"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/model"
	"github.com/medagenda/agenda-api/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimiter   middleware.RateLimiterConfig
	CORS          middleware.CORSConfig
	Timeout       time.Duration
	MetricsPrefix string
	ServiceName   string
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	tenancy *middleware.TenancyMiddleware
	userH   Handler
	clinicH Handler
	scopedH []Handler
	healthH *health.Handler
	metrics *routerMetrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	tenancy *middleware.TenancyMiddleware,
	userH Handler,
	clinicH Handler,
	doctorH Handler,
	patientH Handler,
	appointmentH Handler,
	healthH *health.Handler,
	log *logger.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		tenancy: tenancy,
		userH:   userH,
		clinicH: clinicH,
		scopedH: []Handler{doctorH, patientH, appointmentH},
		healthH: healthH,
		metrics: newRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		otelgin.Middleware(config.ServiceName),
		r.metricsMiddleware(),
		middleware.Timeout(config.Timeout),
		middleware.CORS(config.CORS),
	)

	if config.RateLimiter.Rate > 0 {
		rateLimiter := middleware.NewRateLimiter(config.RateLimiter)
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.engine.GET("/health", r.healthH.LivenessCheck)

	api := r.engine.Group("/api/v1")
	r.healthH.RegisterRoutes(api)

	// User bootstrap stays open: it is the endpoint that issues the
	// first token, so it cannot sit behind the token check.
	r.userH.RegisterRoutes(api)

	// Everything else requires an authenticated caller.
	authed := api.Group("")
	authed.Use(r.auth.Authenticate())
	r.clinicH.RegisterRoutes(authed)

	// Doctor, patient and appointment routes run inside a clinic scope
	// taken from the X-Clinic-ID header.
	scoped := authed.Group("")
	scoped.Use(r.tenancy.RequireClinicAccess())
	for _, h := range r.scopedH {
		h.RegisterRoutes(scoped)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// registerValidations installs the custom binding rules request
// structs rely on.
func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
			_, err := model.ParseTimeOfDay(fl.Field().String())
			return err == nil
		})
	}
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func newRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
