package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/Rippin918/hummingbot-daily-auto/internal/analytics"
	"github.com/Rippin918/hummingbot-daily-auto/internal/api"
	"github.com/Rippin918/hummingbot-daily-auto/internal/cache"
	"github.com/Rippin918/hummingbot-daily-auto/internal/config"
	"github.com/Rippin918/hummingbot-daily-auto/internal/logging"
	"github.com/Rippin918/hummingbot-daily-auto/internal/services"
	"github.com/Rippin918/hummingbot-daily-auto/internal/telemetry"
	"github.com/Rippin918/hummingbot-daily-auto/internal/venues"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	provider, err := telemetry.Init(cfg.Environment != "test")
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize telemetry")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(ctx)
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = redisClient.Close() }()

	var signalCache *cache.SignalCache
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable, signal bus disabled")
	} else {
		signalCache = cache.NewSignalCache(redisClient, cfg.Cache.SignalTTLDuration(), logger)
	}

	notifier := services.NewNotificationService(cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger)

	sinks := []services.SignalSink{notifier}
	if signalCache != nil {
		sinks = append(sinks, signalCache)
	}

	orchestrator := services.NewOrchestrator(analyzerConfig(cfg), logger, sinks...)
	defer orchestrator.Stop()

	for _, pair := range cfg.Market.Pairs {
		for _, venue := range cfg.Market.Venues {
			if err := orchestrator.RegisterPair(pair, venue); err != nil {
				logger.WithError(err).Fatalf("Failed to register %s@%s", pair, venue)
			}
		}
	}

	aggregator := services.NewCrossVenueAggregator(services.CrossVenueConfig{
		MinProfitBps:    decimal.NewFromFloat(cfg.CrossVenue.MinProfitBps),
		CostEstimateBps: decimal.NewFromFloat(cfg.CrossVenue.CostEstimateBps),
		MaxQuoteAge:     cfg.CrossVenue.MaxQuoteAgeDuration(),
		MaxRouteSize:    decimal.NewFromFloat(cfg.CrossVenue.MaxRouteSize),
	}, logger)

	// Static adapters hold each venue's slot until protocol integrations
	// register here; push feeds bypass the poller via the quote endpoint.
	registry := venues.NewRegistry()
	for _, venue := range cfg.Market.Venues {
		registry.Register(venues.NewStaticVenue(venue))
	}
	poller := services.NewQuotePoller(registry, aggregator, cfg.Market.Pairs, cfg.CrossVenue.MaxQuoteAgeDuration()/2, logger)
	poller.Start()
	defer poller.Stop()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, orchestrator, aggregator, signalCache, notifier)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func analyzerConfig(cfg *config.Config) services.AnalyzerConfig {
	return services.AnalyzerConfig{
		VPINBucketSize: cfg.Analytics.VPIN.BucketSize,
		VPINNumBuckets: cfg.Analytics.VPIN.NumBuckets,
		Volatility: analytics.VolatilityConfig{
			WindowPeriods:  cfg.Analytics.Volatility.WindowPeriods,
			MinPeriods:     cfg.Analytics.Volatility.MinPeriods,
			Annualize:      cfg.Analytics.Volatility.Annualize,
			PeriodsPerYear: cfg.Analytics.Volatility.PeriodsPerYear,
			Method:         analytics.VolatilityMethod(cfg.Analytics.Volatility.EstimatorChoice),
		},
		Inventory: analytics.InventoryConfig{
			MaxInventory: cfg.Analytics.Inventory.MaxInventory,
			RiskAversion: cfg.Analytics.Inventory.Gamma,
			TimeHorizon:  cfg.Analytics.Inventory.TimeHorizon,
		},
		Spread: analytics.SpreadConfig{
			Gamma:       cfg.Analytics.Spread.Gamma,
			K:           cfg.Analytics.Spread.K,
			TimeHorizon: cfg.Analytics.Spread.TimeHorizon,
		},
		KyleWindow:  cfg.Analytics.KyleWindow,
		FlowWindow:  cfg.Analytics.FlowWindow,
		TrendPeriod: cfg.Analytics.TrendPeriod,
	}
}
