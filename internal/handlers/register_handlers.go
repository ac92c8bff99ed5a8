package handlers

import (
	"context"
	"net/http"

	"github.com/SscSPs/p2p_ledger/cmd/docs"
	portssvc "github.com/SscSPs/p2p_ledger/internal/core/ports/services"
	"github.com/SscSPs/p2p_ledger/internal/middleware"
	"github.com/SscSPs/p2p_ledger/pkg/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouteOptions carries the optional pieces RegisterRoutes wires in.
type RouteOptions struct {
	// TransferLimit rate limits the endpoints that move money; nil disables it.
	TransferLimit gin.HandlerFunc
	// Metrics serves the prometheus scrape endpoint; nil disables it.
	Metrics http.Handler
	// HealthCheck, when set, must pass for /healthz to report ok.
	HealthCheck func(ctx context.Context) error
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	r.GET("/healthz", healthHandler(opts.HealthCheck))
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	setupAPIV1Routes(r, cfg, services, opts)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterAccountRoutes(v1, service.Account)
	RegisterTransferRoutes(v1, service.Transfer, service.Authorizer, opts.TransferLimit)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
