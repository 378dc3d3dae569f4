// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"assetdesk/internal/domain/auth"
	"assetdesk/internal/domain/reports"
	"assetdesk/internal/domain/setup"
	"assetdesk/internal/domain/views"
	"assetdesk/internal/infrastructure/http/v1/handlers"
	"assetdesk/internal/infrastructure/http/v1/middleware"
	"assetdesk/pkg/logger"
)

// RouterConfig holds the router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Metrics records request metrics; nil disables it.
	Metrics middleware.RequestObserver

	// MetricsHandler serves /metrics; nil leaves the route out.
	MetricsHandler http.Handler

	Health handlers.HealthConfig

	Reports *reports.Service
	Views   *views.Service
	Setup   *setup.Service
	Audit   handlers.AuditLister

	// Debug switches gin to debug mode.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Metrics(cfg.Metrics))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	handlers.NewHealthHandler(cfg.Health).RegisterRoutes(router.Group("/health"))
	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator)) // 1. Validate JWT
		protected.Use(middleware.UserContext(cfg.Logger)) // 2. Request logger with user fields

		base := handlers.NewBaseHandler()
		registerReportRoutes(protected, base, cfg)
		registerViewRoutes(protected, base, cfg)
		registerSetupRoutes(protected, base, cfg)
	}

	return router
}

// registerReportRoutes registers the catalog, preview, export and audit endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Reports == nil {
		return
	}

	group := rg.Group("/reports")
	if cfg.Audit != nil {
		auditHandler := handlers.NewAuditHandler(base, cfg.Audit)
		group.GET("/audit", middleware.RequirePermission(auth.PermissionAuditRead), auditHandler.List)
	}
	handlers.NewReportsHandler(base, cfg.Reports).RegisterRoutes(group)
}

// registerViewRoutes registers saved view CRUD.
func registerViewRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Views == nil {
		return
	}
	handlers.NewViewsHandler(base, cfg.Views).RegisterRoutes(rg.Group("/views"))
}

// registerSetupRoutes registers the onboarding wizard.
func registerSetupRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Setup == nil {
		return
	}

	handler := handlers.NewSetupHandler(base, cfg.Setup)
	group := rg.Group("/setup")
	group.GET("/steps", handler.Steps)
	group.POST("/steps/:step/validate", handler.ValidateStep)
	group.POST("/submit", middleware.RequirePermission(auth.PermissionSetupWrite), handler.Submit)
}
