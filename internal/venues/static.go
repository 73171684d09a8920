package venues

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// StaticVenue serves quotes and depth profiles from in-memory snapshots. It
// backs simulations and tests, and doubles as the adapter for feeds that
// push state instead of being polled.
type StaticVenue struct {
	name string

	mu     sync.RWMutex
	quotes map[string]models.DEXQuote
	depth  map[string][]LiquidityBand
}

// NewStaticVenue creates an empty snapshot-backed venue.
func NewStaticVenue(name string) *StaticVenue {
	return &StaticVenue{
		name:   name,
		quotes: make(map[string]models.DEXQuote),
		depth:  make(map[string][]LiquidityBand),
	}
}

// Name implements Venue.
func (v *StaticVenue) Name() string { return v.name }

// SetQuote replaces the stored quote for a pair, stamping it with the
// venue's name and the current time when unset.
func (v *StaticVenue) SetQuote(pair string, bid, ask, liquidity decimal.Decimal) {
	v.mu.Lock()
	v.quotes[pair] = models.DEXQuote{
		Venue:     v.name,
		Pair:      pair,
		Bid:       bid,
		Ask:       ask,
		Liquidity: liquidity,
		Timestamp: time.Now(),
	}
	v.mu.Unlock()
}

// SetDepth replaces the stored depth profile for a pair.
func (v *StaticVenue) SetDepth(pair string, bands []LiquidityBand) {
	v.mu.Lock()
	v.depth[pair] = bands
	v.mu.Unlock()
}

// FetchQuote implements Venue.
func (v *StaticVenue) FetchQuote(_ context.Context, pair string) (models.DEXQuote, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	q, ok := v.quotes[pair]
	if !ok {
		return models.DEXQuote{}, fmt.Errorf("venue %s has no quote for %s", v.name, pair)
	}
	return q, nil
}

// FetchLiquidityDistribution implements Venue.
func (v *StaticVenue) FetchLiquidityDistribution(_ context.Context, pair string) ([]LiquidityBand, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	bands, ok := v.depth[pair]
	if !ok {
		return nil, fmt.Errorf("venue %s has no depth for %s", v.name, pair)
	}
	out := make([]LiquidityBand, len(bands))
	copy(out, bands)
	return out, nil
}
