package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-events-console/api/swagger"
	"github.com/noah-isme/campus-events-console/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-events-console/internal/middleware"
	"github.com/noah-isme/campus-events-console/internal/repository"
	"github.com/noah-isme/campus-events-console/internal/service"
	"github.com/noah-isme/campus-events-console/pkg/cache"
	"github.com/noah-isme/campus-events-console/pkg/config"
	"github.com/noah-isme/campus-events-console/pkg/jobs"
	"github.com/noah-isme/campus-events-console/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-events-console/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-events-console/pkg/middleware/requestid"
)

// @title Campus Events Console API
// @version 0.1.0
// @description Staff console and student app view models over the campus event backend.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Cache.KeyPrefix, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	client, err := repository.NewAPIClient(repository.APIClientConfig{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: cfg.Backend.UserAgent,
		Observer:  metrics,
		Logger:    logr,
	})
	if err != nil {
		logr.Fatal("failed to init backend client", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(client)
	registrationRepo := repository.NewRegistrationRepository(client)
	attendanceRepo := repository.NewAttendanceRepository(client)
	feedbackRepo := repository.NewFeedbackRepository(client)
	studentRepo := repository.NewStudentRepository(client)
	reportRepo := repository.NewReportRepository(client)

	validate := service.NewValidator()
	coordinator := service.NewMutationCoordinator(logr, service.WithMutationMetrics(metrics))

	eventSvc := service.NewEventService(eventRepo, attendanceRepo, coordinator, cacheSvc, service.ContextConfirmer{}, validate,
		service.EventServiceConfig{FetchConcurrency: cfg.Backend.FetchConcurrency}, metrics, logr)
	attendanceSvc := service.NewAttendanceService(registrationRepo, attendanceRepo, coordinator, validate, metrics, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, studentRepo, coordinator, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, studentRepo, coordinator, validate, logr)
	dashboardSvc := service.NewDashboardService(eventRepo, registrationRepo, attendanceRepo, feedbackRepo, logr)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, logr)

	eventSvc.OnEventDeleted(attendanceSvc.DropEvent)
	coordinator.AddHook(eventSvc)

	dispatcher := service.NewRefreshDispatcher(jobs.QueueConfig{
		Workers:    cfg.Refresh.Workers,
		MaxRetries: cfg.Refresh.MaxRetries,
		RetryDelay: cfg.Refresh.RetryDelay,
		Logger:     logr,
	}, eventSvc.Store(), attendanceSvc, reportSvc)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	coordinator.AddHook(dispatcher)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins, cfg.CORS.MaxAge))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Events:     handler.NewEventHandler(eventSvc, dashboardSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Feedback:   handler.NewFeedbackHandler(feedbackSvc),
		Reports:    handler.NewReportHandler(reportSvc),
		Mutations:  handler.NewMutationHandler(coordinator),
		Students: handler.NewStudentHandler(handler.StudentHandlerDeps{
			Events:        eventSvc,
			Home:          dashboardSvc,
			Registrations: registrationSvc,
			Attendance:    attendanceSvc,
			Feedback:      feedbackSvc,
		}),
		Metrics: handler.NewMetricsHandler(metrics, client),
	})

	if cfg.EnableDocs && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
