// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tenantpress/internal/infrastructure/http/v1/handlers"
	"tenantpress/internal/infrastructure/http/v1/middleware"
	"tenantpress/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// JWTValidator enables bearer auth when set
	JWTValidator middleware.JWTValidator

	ArticleService handlers.ArticleService
	UserService    handlers.UserService

	// Gatherer backs /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	// Tenant runs first, then Auth compares the token tenant with it.
	api := router.Group("/api/v1")
	api.Use(middleware.Tenant())
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	base := handlers.NewBaseHandler()
	RegisterArticleRoutes(api, handlers.NewArticleHandler(base, cfg.ArticleService))
	RegisterUserRoutes(api, handlers.NewUserHandler(base, cfg.UserService))

	return router
}
