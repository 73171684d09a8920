package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Rippin918/hummingbot-daily-auto/internal/api/handlers"
	"github.com/Rippin918/hummingbot-daily-auto/internal/cache"
	"github.com/Rippin918/hummingbot-daily-auto/internal/services"
	"github.com/Rippin918/hummingbot-daily-auto/internal/telemetry"
)

// SetupRoutes mounts all HTTP endpoints. The signal cache may be nil when
// Redis is not configured; the routes degrade to orchestrator-only reads.
// The notifier may be nil when alerting is not wired.
func SetupRoutes(router *gin.Engine, orchestrator *services.Orchestrator, aggregator *services.CrossVenueAggregator, signals *cache.SignalCache, notifier handlers.ArbitrageNotifier) {
	router.Use(otelgin.Middleware(telemetry.ServiceName))

	health := handlers.NewHealthHandler(signals)
	router.GET("/health", health.Health)

	analytics := handlers.NewAnalyticsHandler(orchestrator, aggregator, signals, notifier)

	v1 := router.Group("/api/v1")
	{
		signalRoutes := v1.Group("/signals")
		{
			signalRoutes.GET("", analytics.GetSignals)
			signalRoutes.GET("/:venue/:pair", analytics.GetSignal)
		}

		market := v1.Group("/market")
		{
			market.GET("/spread/:pair", analytics.GetSpreadMatrix)
			market.GET("/liquidity/:pair", analytics.GetLiquidity)
			market.GET("/route/:pair", analytics.GetRoute)
		}

		v1.GET("/arbitrage/:pair", analytics.GetArbitrage)

		events := v1.Group("/events")
		{
			events.POST("/swap", analytics.PostSwap)
			events.POST("/quote", analytics.PostQuote)
		}
	}
}
