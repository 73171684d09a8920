package analytics

import (
	"fmt"
	"math"
)

// SpreadConfig holds the Avellaneda-Stoikov model parameters: gamma is the
// risk aversion coefficient, K the order-arrival intensity decay, and
// TimeHorizon the remaining quote lifetime (T - t) in the model's time units.
type SpreadConfig struct {
	Gamma       float64 `mapstructure:"gamma"`
	K           float64 `mapstructure:"k"`
	TimeHorizon float64 `mapstructure:"time_horizon"`
}

// OptimalQuotes is a bid/ask pair around a reservation price.
type OptimalQuotes struct {
	ReservationPrice float64 `json:"reservation_price"`
	Bid              float64 `json:"bid"`
	Ask              float64 `json:"ask"`
	Spread           float64 `json:"spread"`
	SpreadBps        float64 `json:"spread_bps"`
}

// SpreadCalculator computes the Avellaneda-Stoikov (2008) optimal total
// spread delta = gamma*sigma^2*(T-t) + (2/gamma)*ln(1 + gamma/k) and places
// quotes symmetrically around the reservation price.
type SpreadCalculator struct {
	cfg SpreadConfig
}

// NewSpreadCalculator validates the model parameters. Gamma, K and
// TimeHorizon must all be positive; there is no runtime fallback.
func NewSpreadCalculator(cfg SpreadConfig) (*SpreadCalculator, error) {
	if cfg.Gamma <= 0 {
		return nil, fmt.Errorf("%w: gamma must be positive, got %f", ErrInvalidParameter, cfg.Gamma)
	}
	if cfg.K <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %f", ErrInvalidParameter, cfg.K)
	}
	if cfg.TimeHorizon <= 0 {
		return nil, fmt.Errorf("%w: time_horizon must be positive, got %f", ErrInvalidParameter, cfg.TimeHorizon)
	}
	return &SpreadCalculator{cfg: cfg}, nil
}

// OptimalSpread returns the total spread for the given volatility. Zero
// volatility still yields the strictly positive liquidity term.
func (s *SpreadCalculator) OptimalSpread(sigma float64) float64 {
	risk := s.cfg.Gamma * sigma * sigma * s.cfg.TimeHorizon
	liquidity := (2 / s.cfg.Gamma) * math.Log(1+s.cfg.Gamma/s.cfg.K)
	return risk + liquidity
}

// Quotes places bid and ask around the reservation price, widening the half
// spread by multiplier (price-impact adjustment, >= 1 in practice).
func (s *SpreadCalculator) Quotes(reservation, sigma, multiplier float64) OptimalQuotes {
	if multiplier <= 0 {
		multiplier = 1
	}
	half := s.OptimalSpread(sigma) / 2 * multiplier
	q := OptimalQuotes{
		ReservationPrice: reservation,
		Bid:              reservation - half,
		Ask:              reservation + half,
		Spread:           2 * half,
	}
	if reservation > 0 {
		q.SpreadBps = q.Spread / reservation * 10000
	}
	return q
}
