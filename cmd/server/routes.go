// Package main provides the campus assistant server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campusbuddy/campusbuddy-go/internal/api"
	"github.com/campusbuddy/campusbuddy-go/internal/config"
	"github.com/campusbuddy/campusbuddy-go/internal/docstore"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
)

// setupRoutes configures all HTTP routes.
func setupRoutes(router *gin.Engine, handler *api.Handler, db *storage.DB, store *docstore.Store, registry *prometheus.Registry, cfg *config.Config) {
	// Liveness probe: only that the process is running, no dependency checks.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe: database reachable, plus row counts for visibility.
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		attendanceCount, _ := db.CountAttendance(c.Request.Context())
		timetableCount, _ := db.CountTimetable(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"data": gin.H{
				"attendance": attendanceCount,
				"timetable":  timetableCount,
				"documents":  store.Len(),
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Conversational endpoints.
	apiGroup := router.Group("/api")
	apiGroup.POST("/chat", handler.Chat)
	apiGroup.POST("/upload", handler.Upload)

	// Prometheus metrics, behind basic auth when configured.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsUsername != "" && cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
