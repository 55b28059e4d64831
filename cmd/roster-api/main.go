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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-enrollment-roster/api/swagger"
	"github.com/noah-isme/sma-enrollment-roster/internal/handler"
	"github.com/noah-isme/sma-enrollment-roster/internal/middleware"
	"github.com/noah-isme/sma-enrollment-roster/internal/service"
	"github.com/noah-isme/sma-enrollment-roster/pkg/config"
	"github.com/noah-isme/sma-enrollment-roster/pkg/export"
	"github.com/noah-isme/sma-enrollment-roster/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-enrollment-roster/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-enrollment-roster/pkg/middleware/requestid"
)

// @title Enrollment Roster API
// @version 0.1.0
// @description Student enrollment form and per-session roster
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	sessions := service.NewSessionService(service.SessionConfig{
		TTL:        cfg.Sessions.TTL,
		MaxRecords: cfg.Roster.MaxRecords,
		Form:       service.FormConfig{SubmitDelay: cfg.Form.SubmitDelay},
	}, service.NewFormValidator(), metrics, logr)
	go sessions.Run(ctx, cfg.Sessions.SweepInterval)

	enrollment := handler.NewEnrollmentHandler(sessions, nil)
	if cfg.Exports.Enabled {
		exports := service.NewRosterExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)
		enrollment = handler.NewEnrollmentHandler(sessions, exports)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(corsmiddleware.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
	}))

	handler.NewMetricsHandler(metrics, sessions).Register(r)
	enrollment.Register(r.Group(cfg.APIPrefix))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
