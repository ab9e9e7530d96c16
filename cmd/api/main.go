package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campuslink/campus-events-api/api/swagger"
	"github.com/campuslink/campus-events-api/internal/handler"
	internalmiddleware "github.com/campuslink/campus-events-api/internal/middleware"
	"github.com/campuslink/campus-events-api/internal/repository"
	"github.com/campuslink/campus-events-api/internal/service"
	"github.com/campuslink/campus-events-api/pkg/cache"
	"github.com/campuslink/campus-events-api/pkg/config"
	"github.com/campuslink/campus-events-api/pkg/database"
	"github.com/campuslink/campus-events-api/pkg/logger"
	corsmiddleware "github.com/campuslink/campus-events-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuslink/campus-events-api/pkg/middleware/requestid"
)

// @title Campus Events API
// @version 1.0.0
// @description Event management for colleges: registrations, waitlists, attendance and reports
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

	if err := database.Migrate(cfg.Database); err != nil {
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Reports.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, report caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	collegeRepo := repository.NewCollegeRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	reportRepo := repository.NewReportRepository(db)

	collegeSvc := service.NewCollegeService(collegeRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, collegeRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, collegeRepo, cacheSvc, validate, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, cacheSvc, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheSvc, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, cacheSvc, validate, logr)
	reportSvc := service.NewReportService(reportRepo, cacheSvc, metricsSvc, cfg.Reports, logr)
	exportSvc := service.NewExportService(reportSvc, logr)

	collegeHandler := handler.NewCollegeHandler(collegeSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, reportSvc)
	eventHandler := handler.NewEventHandler(eventSvc, attendanceSvc, feedbackSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/colleges", collegeHandler.Create)
		api.GET("/colleges", collegeHandler.List)
		api.GET("/colleges/:id", collegeHandler.Get)

		api.POST("/students", studentHandler.Create)
		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)
		api.GET("/students/:id/participation", studentHandler.Participation)

		api.POST("/events", eventHandler.Create)
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)
		api.POST("/events/:id/cancel", eventHandler.Cancel)
		api.POST("/events/:id/complete", eventHandler.Complete)
		api.GET("/events/:id/attendance", eventHandler.Attendance)
		api.GET("/events/:id/feedback", eventHandler.Feedback)

		api.POST("/registrations", registrationHandler.Create)
		api.GET("/registrations", registrationHandler.List)
		api.GET("/registrations/:id", registrationHandler.Get)
		api.DELETE("/registrations/:id", registrationHandler.Cancel)

		api.POST("/attendance", attendanceHandler.Create)
		api.POST("/feedback", feedbackHandler.Create)

		api.GET("/reports/events", reportHandler.Popularity)
		api.GET("/reports/events/:id", reportHandler.Event)
		api.GET("/reports/events/:id/export", reportHandler.EventExport)
		api.GET("/reports/top-students", reportHandler.TopStudents)
		api.GET("/reports/colleges", reportHandler.Colleges)

		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
