package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"mail-webhook-relay/internal/auth"
	"mail-webhook-relay/internal/config"
	metricsPkg "mail-webhook-relay/internal/metrics"
	"mail-webhook-relay/internal/middleware"
	"mail-webhook-relay/internal/pipeline"
	"mail-webhook-relay/internal/store"
	"mail-webhook-relay/internal/sweeper"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db       *gorm.DB
	store    *store.Store
	pipeline *pipeline.Pipeline
	auth     *auth.Manager
	sweeper  *sweeper.Sweeper
	metrics  *metricsPkg.Metrics
	cfg      *config.Config
}

// NewHandlers creates new HTTP handlers
func NewHandlers(db *gorm.DB, s *store.Store, p *pipeline.Pipeline, a *auth.Manager, sw *sweeper.Sweeper, m *metricsPkg.Metrics, cfg *config.Config) *Handlers {
	return &Handlers{
		db:       db,
		store:    s,
		pipeline: p,
		auth:     a,
		sweeper:  sw,
		metrics:  m,
		cfg:      cfg,
	}
}

// SetupRoutes sets up all HTTP routes
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/api/webhook/email", h.IngestEmail)
	router.POST("/api/webhook/cleanup", h.Cleanup)

	router.POST("/api/auth/login", h.Login)

	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(h.auth))
	{
		api.GET("/emails", h.GetEmails)
		api.GET("/emails/:id", h.GetEmail)
		api.DELETE("/emails/:id", h.DeleteEmail)
		api.GET("/stats", h.GetStats)
		api.GET("/config", h.GetConfig)

		api.GET("/rules", h.GetRules)
		api.POST("/rules", h.CreateRule)
		api.GET("/rules/:id", h.GetRule)
		api.PUT("/rules/:id", h.UpdateRule)
		api.DELETE("/rules/:id", h.DeleteRule)
		api.PATCH("/rules/:id/enable", h.EnableRule)
		api.PATCH("/rules/:id/disable", h.DisableRule)
	}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "ok",
		Metrics:   make(map[string]string),
	}

	if err := h.db.Raw("SELECT 1").Error; err != nil {
		response.Status = "error"
		response.Database = "error"
		logrus.Errorf("Database health check failed: %v", err)
	}

	if h.sweeper != nil && h.sweeper.IsRunning() {
		response.Metrics["sweeper"] = "running"
		response.Metrics["next_run"] = h.sweeper.NextRun().Format(time.RFC3339)
	} else {
		response.Metrics["sweeper"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// GetConfig returns the non-secret configuration the dashboard needs.
func (h *Handlers) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"retentionMinutes": h.cfg.Retention.Minutes,
	})
}
