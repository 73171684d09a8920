package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

const (
	signalKeyPrefix = "mm:signal:"
	arbKeyPrefix    = "mm:arb:"

	// SignalChannel carries every composed signal as JSON.
	SignalChannel = "mm:signals"
	// ArbitrageChannel carries detected opportunity batches as JSON.
	ArbitrageChannel = "mm:arbitrage"
)

// SignalCache publishes composed signals and arbitrage opportunities on
// Redis pub/sub channels and keeps the latest value per key with a TTL so
// downstream consumers can poll instead of subscribing.
type SignalCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewSignalCache creates a cache over an existing Redis client.
func NewSignalCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *SignalCache {
	return &SignalCache{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

func signalKey(pair, venue string) string {
	return signalKeyPrefix + pair + "@" + venue
}

// PublishSignal stores the latest signal for its (pair, venue) and fans it
// out on the signal channel. Implements the orchestrator's SignalSink.
func (c *SignalCache) PublishSignal(ctx context.Context, signal models.UnifiedMMSignal) error {
	data, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	key := signalKey(signal.Pair, signal.Venue)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache signal %s: %w", key, err)
	}
	if err := c.redis.Publish(ctx, SignalChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish signal %s: %w", key, err)
	}
	return nil
}

// LatestSignal returns the cached signal for (pair, venue). The second
// return is false on a miss or an expired entry.
func (c *SignalCache) LatestSignal(ctx context.Context, pair, venue string) (models.UnifiedMMSignal, bool) {
	data, err := c.redis.Get(ctx, signalKey(pair, venue)).Result()
	if err == redis.Nil {
		return models.UnifiedMMSignal{}, false
	}
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"pair":  pair,
			"venue": venue,
		}).Warn("Redis error fetching signal")
		return models.UnifiedMMSignal{}, false
	}

	var signal models.UnifiedMMSignal
	if err := json.Unmarshal([]byte(data), &signal); err != nil {
		c.logger.WithError(err).Warn("Failed to decode cached signal")
		return models.UnifiedMMSignal{}, false
	}
	return signal, true
}

// PublishArbitrage stores the latest opportunity batch for the pair and fans
// it out on the arbitrage channel.
func (c *SignalCache) PublishArbitrage(ctx context.Context, pair string, opps []models.ArbitrageOpportunity) error {
	data, err := json.Marshal(opps)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunities: %w", err)
	}

	if err := c.redis.Set(ctx, arbKeyPrefix+pair, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache opportunities for %s: %w", pair, err)
	}
	if err := c.redis.Publish(ctx, ArbitrageChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish opportunities for %s: %w", pair, err)
	}
	return nil
}

// LatestArbitrage returns the cached opportunity batch for the pair.
func (c *SignalCache) LatestArbitrage(ctx context.Context, pair string) ([]models.ArbitrageOpportunity, bool) {
	data, err := c.redis.Get(ctx, arbKeyPrefix+pair).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("pair", pair).Warn("Redis error fetching opportunities")
		return nil, false
	}

	var opps []models.ArbitrageOpportunity
	if err := json.Unmarshal([]byte(data), &opps); err != nil {
		c.logger.WithError(err).Warn("Failed to decode cached opportunities")
		return nil, false
	}
	return opps, true
}

// Ping verifies Redis connectivity, used by the health endpoint.
func (c *SignalCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}
