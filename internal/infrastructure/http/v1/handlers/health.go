// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/infrastructure/storage/postgres"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthConfig configures the health endpoints.
type HealthConfig struct {
	App     string
	Version string

	// Checks are pinged by /health/ready, keyed by dependency name.
	Checks map[string]Pinger

	// PoolStats, when set, is reported by /health/info.
	PoolStats func() postgres.PoolStats

	Timeout time.Duration
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	cfg     HealthConfig
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.App == "" {
		cfg.App = "assetdesk"
	}
	return &HealthHandler{cfg: cfg, started: time.Now()}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.Timeout)
	defer cancel()

	names := make([]string, 0, len(h.cfg.Checks))
	for name := range h.cfg.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.cfg.Checks[name].Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     h.cfg.App,
		"version": h.cfg.Version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	}
	if h.cfg.PoolStats != nil {
		stat := h.cfg.PoolStats()
		body["database"] = map[string]any{
			"total_conns":    stat.TotalConns,
			"acquired_conns": stat.AcquiredConns,
			"idle_conns":     stat.IdleConns,
			"max_conns":      stat.MaxConns,
		}
	}
	c.JSON(http.StatusOK, body)
}

// RegisterRoutes registers health routes.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Live)
	rg.GET("/ready", h.Ready)
	rg.GET("/info", h.Info)
}
