package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/accompaniment-planner-api/api/swagger"
	"github.com/noah-isme/accompaniment-planner-api/internal/gateway"
	"github.com/noah-isme/accompaniment-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/accompaniment-planner-api/internal/middleware"
	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/internal/repository"
	"github.com/noah-isme/accompaniment-planner-api/internal/service"
	"github.com/noah-isme/accompaniment-planner-api/pkg/cache"
	"github.com/noah-isme/accompaniment-planner-api/pkg/config"
	"github.com/noah-isme/accompaniment-planner-api/pkg/database"
	"github.com/noah-isme/accompaniment-planner-api/pkg/export"
	"github.com/noah-isme/accompaniment-planner-api/pkg/jobs"
	"github.com/noah-isme/accompaniment-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/accompaniment-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/accompaniment-planner-api/pkg/middleware/requestid"
)

// @title Accompaniment Planner API
// @version 1.0.0
// @description Weekly classroom accompaniment visit planning
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewPostgres(startupCtx, cfg.Database)
	if err != nil {
		cancelStartup()
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(startupCtx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cancelStartup()

	metrics := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		repo := repository.NewCacheRepository(redisClient, "accompaniment:", logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	specialistRepo := repository.NewSpecialistRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	scheduleRepo := repository.NewTeacherScheduleRepository(db)
	visitRepo := repository.NewVisitRepository(db)

	var recorder *service.VisitRecorder
	visitQueue := jobs.NewQueue("visit-recorder", func(ctx context.Context, job jobs.Job) error {
		return recorder.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Error("confirmed visits not recorded", zap.String("job_id", job.ID), zap.Error(err))
		},
	})
	recorder = service.NewVisitRecorder(visitRepo, visitQueue, logr)
	visitQueue.Start(context.Background())
	defer visitQueue.Stop()

	confirmationClient := gateway.NewConfirmationClient(gateway.Config{
		BaseURL:       cfg.Confirmation.BaseURL,
		APIKey:        cfg.Confirmation.APIKey,
		RatePerSecond: cfg.Confirmation.RatePerSecond,
		Burst:         cfg.Confirmation.Burst,
		Timeout:       cfg.Confirmation.HTTPTimeout,
	}, nil, metrics, logr)

	authService := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	}, logr)

	planningService := service.NewPlanningService(service.PlanningServiceParams{
		Specialists:  specialistRepo,
		Availability: availabilityRepo,
		Schedules:    scheduleRepo,
		Visits:       visitRepo,
		Recorder:     recorder,
		Gateway:      confirmationClient,
		Cache:        cacheService,
		Metrics:      metrics,
		Validator:    validate,
		Logger:       logr,
		Config: service.PlanningConfig{
			SessionTTL:     cfg.Planner.SessionTTL,
			ConfirmTimeout: cfg.Planner.ConfirmTimeout,
			Location:       cfg.Planner.Location(),
		},
	})
	go planningService.RunJanitor(ctx, cfg.Planner.JanitorInterval)

	availabilityService := service.NewAvailabilityService(availabilityRepo, db, planningService, metrics, validate, logr)
	exportService := service.NewPlanExportService(planningService, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	planningHandler := handler.NewPlanningHandler(planningService, exportService)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityService)
	metricsHandler := handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := internalmiddleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, logr)
	api := r.Group(cfg.APIPrefix)
	api.Use(
		internalmiddleware.JWT(authService),
		internalmiddleware.RequireRoles(models.RoleSpecialist, models.RoleAdmin),
		limiter.Middleware(),
		internalmiddleware.WithResponseMeta(),
	)

	planner := api.Group("/planner")
	planner.POST("/session", planningHandler.LoadSession)
	planner.DELETE("/session", planningHandler.DiscardSession)
	planner.GET("/budget/:month", planningHandler.Budget)
	planner.GET("/weeks/:weekId", planningHandler.Week)
	planner.DELETE("/weeks/:weekId", planningHandler.DiscardWeek)
	planner.PUT("/weeks/:weekId/selections/:teacherId", planningHandler.Select)
	planner.DELETE("/weeks/:weekId/selections/:teacherId", planningHandler.Deselect)
	planner.POST("/weeks/:weekId/auto-assign", planningHandler.AutoAssign)
	planner.POST("/weeks/:weekId/confirm", planningHandler.Confirm)
	planner.GET("/weeks/:weekId/export", planningHandler.Export)

	availability := api.Group("/availability")
	availability.GET("", availabilityHandler.List)
	availability.POST("", availabilityHandler.Create)
	availability.PUT("/:id", availabilityHandler.Update)
	availability.DELETE("/:id", availabilityHandler.Delete)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Planner.ConfirmTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
