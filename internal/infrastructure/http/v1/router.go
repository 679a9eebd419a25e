// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"hydrostock/internal/domain/audit"
	"hydrostock/internal/domain/movement"
	"hydrostock/internal/domain/registers/stock"
	"hydrostock/internal/infrastructure/http/v1/handlers"
	"hydrostock/internal/infrastructure/http/v1/middleware"
	"hydrostock/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Engine applies movements and answers quantity reads
	Engine *movement.Engine

	// Ledger serves balance listings
	Ledger *stock.Ledger

	// AuditReader serves the audit trail
	AuditReader *audit.Reader

	// Health backs the /health endpoints
	Health *handlers.HealthHandler

	// JWTValidator for token validation. When nil, the X-Requested-By
	// header names the actor.
	JWTValidator middleware.JWTValidator
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if cfg.Health != nil {
		health := router.Group("/health")
		{
			health.GET("/live", cfg.Health.Live)
			health.GET("/ready", cfg.Health.Ready)
			health.GET("/info", cfg.Health.Info)
		}
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	{
		base := handlers.NewBaseHandler()
		registerMovementRoutes(v1, base, cfg)
		registerStockRoutes(v1, base, cfg)
		registerAuditRoutes(v1, base, cfg)
	}

	return router
}

func registerMovementRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewMovementHandler(base, cfg.Engine)

	movements := rg.Group("/movements")
	movements.POST("", h.Submit)
	movements.GET("", h.List)
	movements.GET("/:id", h.Get)
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockHandler(base, cfg.Engine, cfg.Ledger)

	stockGroup := rg.Group("/stock")
	stockGroup.GET("/quantity", h.Quantity)
	stockGroup.GET("/balances", h.Balances)
}

func registerAuditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewAuditHandler(base, cfg.AuditReader)

	auditGroup := rg.Group("/audit")
	auditGroup.GET("", h.List)
	auditGroup.GET("/:id", h.Get)
}
