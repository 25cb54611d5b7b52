// Package main provides the campus assistant server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campusbuddy/campusbuddy-go/internal/api"
	"github.com/campusbuddy/campusbuddy-go/internal/buildinfo"
	"github.com/campusbuddy/campusbuddy-go/internal/chat"
	"github.com/campusbuddy/campusbuddy-go/internal/config"
	"github.com/campusbuddy/campusbuddy-go/internal/docstore"
	"github.com/campusbuddy/campusbuddy-go/internal/extract"
	"github.com/campusbuddy/campusbuddy-go/internal/llm"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/attendance"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/timetable"
	"github.com/campusbuddy/campusbuddy-go/internal/ratelimit"
	"github.com/campusbuddy/campusbuddy-go/internal/sentry"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
	"github.com/campusbuddy/campusbuddy-go/internal/syllabus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger (with Better Stack shipping when configured)
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.WithField("release", buildinfo.Release()).Info("Starting Campus Buddy server")

	// Initialize error tracking
	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: "production",
		Release:     buildinfo.Release(),
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	// Create Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Document pipeline
	extractor := extract.New(cfg.Limits.LineTolerance, log, m)
	store := docstore.New(cfg.Limits.MinDocumentTokens, log, m)
	uploader := chat.NewUploader(extractor, store, log, m)

	// Syllabus lookup service
	locator := syllabus.NewLocator(cfg.Limits, log)
	sylService := syllabus.NewService(cfg.SyllabusPDFPath, extractor, locator, log)
	log.WithField("path", cfg.SyllabusPDFPath).Info("Syllabus service created")

	// Language model
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, err := llm.New(ctx, cfg, log, m)
	if err != nil {
		log.WithError(err).Fatal("Failed to create LLM client")
	}
	defer func() { _ = model.Close() }()
	log.WithField("provider", model.Provider().String()).Info("LLM client created")

	// Tool dispatch and orchestration
	dispatcher := chat.NewDispatcher(
		attendance.New(db, log),
		timetable.New(db, log),
		sylService,
		store,
		uploader,
		cfg.Limits.PromptContentCap,
		log,
		m,
	)
	orchestrator := chat.NewOrchestrator(
		model,
		dispatcher,
		chat.NewReformatClassifier(cfg.Limits.ReformatKeywords),
		log,
		m,
	)

	// Per-client rate limiting for the chat endpoint
	limiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "chat",
		Burst:         cfg.ChatRateBurst,
		RefillRate:    cfg.ChatRateRefillSec,
		CleanupPeriod: 5 * time.Minute,
		Metrics:       m,
	})
	defer limiter.Stop()

	handler := api.NewHandler(orchestrator, uploader, limiter, log, m)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	setupRoutes(router, handler, db, store, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // model calls dominate response time
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
