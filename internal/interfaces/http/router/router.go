// Package router wires the webhook intake surface onto a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/sheetflow/listener/internal/infrastructure/config"
	"github.com/sheetflow/listener/internal/infrastructure/logger"
	"github.com/sheetflow/listener/internal/interfaces/http/handler"
	"github.com/sheetflow/listener/internal/interfaces/http/middleware"
)

// Config bundles what the router needs
type Config struct {
	HTTP             config.HTTPConfig
	Env              string
	TelemetryEnabled bool
}

// New builds the gin engine with all middleware and routes registered
func New(cfg Config, webhook *handler.WebhookHandler, system *handler.SystemHandler, log *zap.Logger) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.TelemetryEnabled {
		engine.Use(otelgin.Middleware("sheetflow-listener"))
	}
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.GET("/health", system.Health)

	webhooks := engine.Group("/webhooks")
	webhooks.Use(middleware.WebhookAuth(cfg.HTTP.WebhookSecret, log))
	webhooks.POST("/platform", webhook.HandleDelivery)

	systemGroup := engine.Group("/system")
	systemGroup.GET("/deliveries", system.RecentDeliveries)

	return engine
}
