package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Telegram    TelegramConfig   `mapstructure:"telegram"`
	Market      MarketConfig     `mapstructure:"market"`
	Analytics   AnalyticsConfig  `mapstructure:"analytics"`
	CrossVenue  CrossVenueConfig `mapstructure:"crossvenue"`
	Cache       CacheConfig      `mapstructure:"cache"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// MarketConfig lists the (pair, venue) combinations the orchestrator
// registers at startup.
type MarketConfig struct {
	Pairs  []string `mapstructure:"pairs"`
	Venues []string `mapstructure:"venues"`
}

// AnalyticsConfig carries the per-analyzer estimator parameters. Every
// registered (pair, venue) gets its own estimator instances built from the
// same parameters.
type AnalyticsConfig struct {
	VPIN        VPINConfig       `mapstructure:"vpin"`
	Volatility  VolatilityConfig `mapstructure:"volatility"`
	Inventory   InventoryConfig  `mapstructure:"inventory"`
	Spread      SpreadConfig     `mapstructure:"spread"`
	KyleWindow  int              `mapstructure:"kyle_window"`
	FlowWindow  int              `mapstructure:"orderflow_window"`
	TrendPeriod int              `mapstructure:"trend_period"`
}

type VPINConfig struct {
	BucketSize float64 `mapstructure:"bucket_size"`
	NumBuckets int     `mapstructure:"num_buckets"`
}

type VolatilityConfig struct {
	WindowPeriods   int     `mapstructure:"window_periods"`
	MinPeriods      int     `mapstructure:"min_periods"`
	Annualize       bool    `mapstructure:"annualize"`
	PeriodsPerYear  float64 `mapstructure:"periods_per_year"`
	EstimatorChoice string  `mapstructure:"estimator_choice"`
}

type InventoryConfig struct {
	MaxInventory float64 `mapstructure:"max_inventory"`
	Gamma        float64 `mapstructure:"gamma"`
	TimeHorizon  float64 `mapstructure:"time_horizon"`
}

type SpreadConfig struct {
	Gamma       float64 `mapstructure:"gamma"`
	K           float64 `mapstructure:"k"`
	TimeHorizon float64 `mapstructure:"time_horizon"`
}

type CrossVenueConfig struct {
	MinProfitBps    float64 `mapstructure:"min_profit_bps"`
	CostEstimateBps float64 `mapstructure:"cost_estimate_bps"`
	MaxQuoteAge     string  `mapstructure:"max_quote_age"`
	MaxRouteSize    float64 `mapstructure:"max_route_size"`
}

type CacheConfig struct {
	SignalTTL string `mapstructure:"signal_ttl"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind TELEGRAM_BOT_TOKEN environment variable: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects parameter values the estimators would refuse at
// construction time. Failing here keeps a misconfigured process from
// starting at all.
func (c *Config) Validate() error {
	if c.Analytics.VPIN.BucketSize <= 0 {
		return fmt.Errorf("analytics.vpin.bucket_size must be positive, got %f", c.Analytics.VPIN.BucketSize)
	}
	if c.Analytics.VPIN.NumBuckets <= 0 {
		return fmt.Errorf("analytics.vpin.num_buckets must be positive, got %d", c.Analytics.VPIN.NumBuckets)
	}
	if c.Analytics.Spread.Gamma <= 0 {
		return fmt.Errorf("analytics.spread.gamma must be positive, got %f", c.Analytics.Spread.Gamma)
	}
	if c.Analytics.Spread.K <= 0 {
		return fmt.Errorf("analytics.spread.k must be positive, got %f", c.Analytics.Spread.K)
	}
	if c.Analytics.Inventory.MaxInventory <= 0 {
		return fmt.Errorf("analytics.inventory.max_inventory must be positive, got %f", c.Analytics.Inventory.MaxInventory)
	}
	if c.Analytics.Inventory.Gamma <= 0 {
		return fmt.Errorf("analytics.inventory.gamma must be positive, got %f", c.Analytics.Inventory.Gamma)
	}
	if c.Analytics.Volatility.WindowPeriods <= 0 {
		return fmt.Errorf("analytics.volatility.window_periods must be positive, got %d", c.Analytics.Volatility.WindowPeriods)
	}
	if c.Analytics.Volatility.MinPeriods <= 0 || c.Analytics.Volatility.MinPeriods > c.Analytics.Volatility.WindowPeriods {
		return fmt.Errorf("analytics.volatility.min_periods must be in [1, window_periods], got %d", c.Analytics.Volatility.MinPeriods)
	}
	if c.CrossVenue.MaxQuoteAge != "" {
		if _, err := time.ParseDuration(c.CrossVenue.MaxQuoteAge); err != nil {
			return fmt.Errorf("invalid crossvenue.max_quote_age: %w", err)
		}
	}
	if c.Cache.SignalTTL != "" {
		if _, err := time.ParseDuration(c.Cache.SignalTTL); err != nil {
			return fmt.Errorf("invalid cache.signal_ttl: %w", err)
		}
	}
	return nil
}

// MaxQuoteAgeDuration parses the configured quote freshness horizon.
func (c *CrossVenueConfig) MaxQuoteAgeDuration() time.Duration {
	d, err := time.ParseDuration(c.MaxQuoteAge)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SignalTTLDuration parses the configured cache TTL.
func (c *CacheConfig) SignalTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SignalTTL)
	if err != nil {
		return time.Minute
	}
	return d
}

// RedisAddr returns the host:port pair for the Redis client.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("market.pairs", []string{"WETH-USDC"})
	viper.SetDefault("market.venues", []string{"uniswap_v3", "sushiswap"})

	viper.SetDefault("analytics.vpin.bucket_size", 100.0)
	viper.SetDefault("analytics.vpin.num_buckets", 50)
	viper.SetDefault("analytics.volatility.window_periods", 100)
	viper.SetDefault("analytics.volatility.min_periods", 20)
	viper.SetDefault("analytics.volatility.annualize", false)
	viper.SetDefault("analytics.volatility.estimator_choice", "garman_klass")
	viper.SetDefault("analytics.inventory.max_inventory", 100.0)
	viper.SetDefault("analytics.inventory.gamma", 0.1)
	viper.SetDefault("analytics.inventory.time_horizon", 1.0)
	viper.SetDefault("analytics.spread.gamma", 0.1)
	viper.SetDefault("analytics.spread.k", 1.5)
	viper.SetDefault("analytics.spread.time_horizon", 1.0)
	viper.SetDefault("analytics.kyle_window", 100)
	viper.SetDefault("analytics.orderflow_window", 100)
	viper.SetDefault("analytics.trend_period", 14)

	viper.SetDefault("crossvenue.min_profit_bps", 20.0)
	viper.SetDefault("crossvenue.cost_estimate_bps", 10.0)
	viper.SetDefault("crossvenue.max_quote_age", "30s")
	viper.SetDefault("crossvenue.max_route_size", 1000.0)

	viper.SetDefault("cache.signal_ttl", "1m")
}
