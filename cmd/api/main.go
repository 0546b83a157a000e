package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/medagenda/agenda-api/config"
	appointmentHandler "github.com/medagenda/agenda-api/internal/handler/appointment"
	clinicHandler "github.com/medagenda/agenda-api/internal/handler/clinic"
	doctorHandler "github.com/medagenda/agenda-api/internal/handler/doctor"
	healthHandler "github.com/medagenda/agenda-api/internal/handler/health"
	patientHandler "github.com/medagenda/agenda-api/internal/handler/patient"
	userHandler "github.com/medagenda/agenda-api/internal/handler/user"
	"github.com/medagenda/agenda-api/internal/middleware"
	"github.com/medagenda/agenda-api/internal/observability/tracing"
	"github.com/medagenda/agenda-api/internal/repository/postgres"
	"github.com/medagenda/agenda-api/internal/router"
	appointmentService "github.com/medagenda/agenda-api/internal/service/appointment"
	clinicService "github.com/medagenda/agenda-api/internal/service/clinic"
	doctorService "github.com/medagenda/agenda-api/internal/service/doctor"
	patientService "github.com/medagenda/agenda-api/internal/service/patient"
	tenancyService "github.com/medagenda/agenda-api/internal/service/tenancy"
	"github.com/medagenda/agenda-api/pkg/auth"
	"github.com/medagenda/agenda-api/pkg/logger"
	"github.com/medagenda/agenda-api/pkg/metrics"

	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing, log)
	if err != nil {
		log.Fatal(err, "failed to initialize tracing")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	clinicRepo := postgres.NewClinicRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	appointmentRepo := postgres.NewAppointmentRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	tenancySvc := tenancyService.NewService(userRepo)
	clinicSvc := clinicService.NewService(clinicRepo, userRepo)
	doctorSvc := doctorService.NewService(doctorRepo)
	patientSvc := patientService.NewService(patientRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, patientRepo)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour, cfg.JWT.Issuer)
	appMetrics := metrics.NewMetrics("agenda", "api")

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	tenancyMiddleware := middleware.NewTenancyMiddleware(tenancySvc, 30*time.Second)

	rateLimit := middleware.RateLimiterConfig{}
	if cfg.RateLimit.Enabled {
		rateLimit = middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	r := router.NewRouter(
		authMiddleware,
		tenancyMiddleware,
		userHandler.NewHandler(tenancySvc, jwtSvc),
		clinicHandler.NewHandler(clinicSvc, tenancySvc, outboxRepo, log),
		doctorHandler.NewHandler(doctorSvc, outboxRepo, log),
		patientHandler.NewHandler(patientSvc, outboxRepo, log),
		appointmentHandler.NewHandler(appointmentSvc, outboxRepo, log, appMetrics),
		healthHandler.NewHandler(db),
		log,
		router.Config{
			RateLimiter:   rateLimit,
			CORS:          middleware.DefaultCORSConfig(),
			Timeout:       cfg.Server.RequestTimeout,
			MetricsPrefix: "agenda_http",
			ServiceName:   cfg.Tracing.ServiceName,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error(err, "failed to shut down tracing")
	}

	log.Info("server exited")
}
