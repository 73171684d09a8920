// Package venues defines the capability contract a DEX integration must
// satisfy and a registry over the configured set. The analytics core stays
// protocol-agnostic: every venue-specific mechanic (tick math, pool fees,
// batch auctions) lives behind this interface.
package venues

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// LiquidityBand is one slice of a venue's depth profile around mid.
type LiquidityBand struct {
	PriceLow  float64 `json:"price_low"`
	PriceHigh float64 `json:"price_high"`
	Liquidity float64 `json:"liquidity"`
}

// Venue is the minimal surface a DEX integration exposes to the pipeline.
type Venue interface {
	// Name returns the venue identifier used in quotes and signals.
	Name() string
	// FetchQuote returns the venue's current two-sided quote for the pair.
	FetchQuote(ctx context.Context, pair string) (models.DEXQuote, error)
	// FetchLiquidityDistribution returns the depth profile for the pair.
	FetchLiquidityDistribution(ctx context.Context, pair string) ([]LiquidityBand, error)
}

// ErrUnknownVenue is returned for lookups of unregistered venues.
var ErrUnknownVenue = fmt.Errorf("unknown venue")

// Registry holds the configured venue integrations by name.
type Registry struct {
	mu     sync.RWMutex
	venues map[string]Venue
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{venues: make(map[string]Venue)}
}

// Register adds a venue, replacing any previous registration of that name.
func (r *Registry) Register(v Venue) {
	r.mu.Lock()
	r.venues[v.Name()] = v
	r.mu.Unlock()
}

// Get returns the venue registered under name.
func (r *Registry) Get(name string) (Venue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.venues[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVenue, name)
	}
	return v, nil
}

// All returns the registered venues sorted by name.
func (r *Registry) All() []Venue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Venue, 0, len(r.venues))
	for _, v := range r.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Names returns the registered venue names sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.Name()
	}
	return names
}
