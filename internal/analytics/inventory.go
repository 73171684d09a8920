package analytics

import (
	"fmt"
	"math"
)

// InventoryZone is the directional quoting skew implied by current inventory.
type InventoryZone string

const (
	ZoneNeutral          InventoryZone = "neutral"
	ZonePreferBuy        InventoryZone = "prefer_buy"
	ZonePreferSell       InventoryZone = "prefer_sell"
	ZoneAggressivelyBuy  InventoryZone = "aggressively_buy"
	ZoneAggressivelySell InventoryZone = "aggressively_sell"
)

// Inventory ratio thresholds, boundary-inclusive on the aggressive side.
const (
	inventorySkewRatio       = 0.3
	inventoryAggressiveRatio = 0.7
)

// InventoryConfig configures an InventoryTracker.
type InventoryConfig struct {
	MaxInventory float64 `mapstructure:"max_inventory"`
	RiskAversion float64 `mapstructure:"risk_aversion"`
	TimeHorizon  float64 `mapstructure:"time_horizon"`
}

// InventoryState is the tracker's view after an update or query: the signed
// position, its ratio against the limit and the implied quoting zone.
type InventoryState struct {
	Inventory        float64       `json:"inventory"`
	Ratio            float64       `json:"ratio"`
	Zone             InventoryZone `json:"zone"`
	ReservationShift float64       `json:"reservation_shift"`
}

// InventoryTracker holds the signed base-asset position for one (pair, venue)
// and derives the Avellaneda-Stoikov reservation price shift
// r = mid - q * gamma * sigma^2 * (T - t).
type InventoryTracker struct {
	cfg       InventoryConfig
	inventory float64
}

// NewInventoryTracker creates a tracker. MaxInventory, RiskAversion and
// TimeHorizon must all be positive.
func NewInventoryTracker(cfg InventoryConfig) (*InventoryTracker, error) {
	if cfg.MaxInventory <= 0 {
		return nil, fmt.Errorf("%w: max_inventory must be positive, got %f", ErrInvalidParameter, cfg.MaxInventory)
	}
	if cfg.RiskAversion <= 0 {
		return nil, fmt.Errorf("%w: risk_aversion must be positive, got %f", ErrInvalidParameter, cfg.RiskAversion)
	}
	if cfg.TimeHorizon <= 0 {
		return nil, fmt.Errorf("%w: time_horizon must be positive, got %f", ErrInvalidParameter, cfg.TimeHorizon)
	}
	return &InventoryTracker{cfg: cfg}, nil
}

// SetInventory replaces the tracked position. Updates that would push the
// absolute position past MaxInventory are rejected with ErrRiskLimitBreach
// and leave the previous position in place.
func (t *InventoryTracker) SetInventory(q float64) (InventoryState, error) {
	if math.Abs(q) > t.cfg.MaxInventory {
		return t.State(0), fmt.Errorf("%w: |%f| exceeds max_inventory %f", ErrRiskLimitBreach, q, t.cfg.MaxInventory)
	}
	t.inventory = q
	return t.State(0), nil
}

// Inventory returns the current signed position.
func (t *InventoryTracker) Inventory() float64 { return t.inventory }

// Ratio returns inventory / max_inventory in [-1, 1].
func (t *InventoryTracker) Ratio() float64 {
	return t.inventory / t.cfg.MaxInventory
}

// State derives the zone and the reservation shift for the given volatility.
// The shift is subtracted from mid: long inventory lowers the reservation
// price to attract sells against the position.
func (t *InventoryTracker) State(sigma float64) InventoryState {
	ratio := t.Ratio()
	return InventoryState{
		Inventory:        t.inventory,
		Ratio:            ratio,
		Zone:             classifyZone(ratio),
		ReservationShift: t.inventory * t.cfg.RiskAversion * sigma * sigma * t.cfg.TimeHorizon,
	}
}

// ReservationPrice returns mid - q * gamma * sigma^2 * (T - t).
func (t *InventoryTracker) ReservationPrice(mid, sigma float64) float64 {
	return mid - t.inventory*t.cfg.RiskAversion*sigma*sigma*t.cfg.TimeHorizon
}

func classifyZone(ratio float64) InventoryZone {
	switch {
	case ratio >= inventoryAggressiveRatio:
		return ZoneAggressivelySell
	case ratio <= -inventoryAggressiveRatio:
		return ZoneAggressivelyBuy
	case ratio >= inventorySkewRatio:
		return ZonePreferSell
	case ratio <= -inventorySkewRatio:
		return ZonePreferBuy
	default:
		return ZoneNeutral
	}
}
