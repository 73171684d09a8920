package analytics

import (
	"fmt"
	"math"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// FlowRegime classifies the persistence of order-flow imbalance.
type FlowRegime string

const (
	RegimeMeanReverting FlowRegime = "mean_reverting"
	RegimeNeutral       FlowRegime = "neutral"
	RegimeTrending      FlowRegime = "trending"
	RegimeUnknown       FlowRegime = "unknown"
)

// Persistence score thresholds for the regime bands.
const (
	flowMeanRevertingMax = 0.3
	flowTrendingMin      = 0.7
)

// orderflowMinSamples is the minimum number of imbalance observations before
// the AR(1) fit is attempted.
const orderflowMinSamples = 20

// OrderflowResult is the AR(1) regime classification for one (pair, venue).
// HalfLife is in observation periods and only meaningful for rho in (0, 1);
// outside that band Status is non_stationary and Regime is unknown.
type OrderflowResult struct {
	Status      Status     `json:"status"`
	Imbalance   float64    `json:"imbalance"`
	Rho         float64    `json:"rho"`
	HalfLife    float64    `json:"half_life"`
	Persistence float64    `json:"persistence"`
	Regime      FlowRegime `json:"regime"`
	SampleCount int        `json:"sample_count"`
}

// OrderflowAnalyzer fits an AR(1) model to the liquidity imbalance series
// (bid - ask) / (bid + ask) over a rolling window. High autocorrelation means
// imbalance persists (trending flow, quote wide); low or negative
// autocorrelation means imbalance decays fast (mean reverting, quote tight).
type OrderflowAnalyzer struct {
	imbalances *ring[float64]
}

// NewOrderflowAnalyzer creates an analyzer over a window of the given size.
func NewOrderflowAnalyzer(window int) (*OrderflowAnalyzer, error) {
	if window < orderflowMinSamples {
		return nil, fmt.Errorf("%w: window must be at least %d, got %d", ErrInvalidParameter, orderflowMinSamples, window)
	}
	return &OrderflowAnalyzer{imbalances: newRing[float64](window)}, nil
}

// AddObservation records one liquidity snapshot. Snapshots with non-positive
// total liquidity are ignored.
func (a *OrderflowAnalyzer) AddObservation(obs models.OrderflowObservation) {
	bid := obs.BidLiquidity.InexactFloat64()
	ask := obs.AskLiquidity.InexactFloat64()
	total := bid + ask
	if total <= 0 {
		return
	}
	a.imbalances.Push((bid - ask) / total)
}

// Analyze fits rho by OLS on the lag-1 series and maps it onto a regime.
func (a *OrderflowAnalyzer) Analyze() OrderflowResult {
	n := a.imbalances.Len()
	res := OrderflowResult{
		Status:      StatusInsufficientData,
		Regime:      RegimeUnknown,
		SampleCount: n,
	}
	if n > 0 {
		res.Imbalance = a.imbalances.Last()
	}
	if n < orderflowMinSamples {
		return res
	}

	// OLS of x_t on x_{t-1}.
	var meanLag, meanCur float64
	for i := 0; i < n-1; i++ {
		meanLag += a.imbalances.At(i)
		meanCur += a.imbalances.At(i + 1)
	}
	m := float64(n - 1)
	meanLag /= m
	meanCur /= m

	var cov, varLag float64
	for i := 0; i < n-1; i++ {
		dx := a.imbalances.At(i) - meanLag
		cov += dx * (a.imbalances.At(i+1) - meanCur)
		varLag += dx * dx
	}
	if varLag == 0 {
		return res
	}
	rho := cov / varLag
	res.Rho = rho

	if rho <= 0 || rho >= 1 {
		res.Status = StatusNonStationary
		return res
	}

	res.Status = StatusOK
	res.HalfLife = -math.Ln2 / math.Log(rho)
	res.Persistence = (math.Min(res.HalfLife/50, 1) + (rho+1)/2) / 2
	res.Regime = classifyRegime(res.Persistence)
	return res
}

// SampleCount returns the number of windowed imbalance observations.
func (a *OrderflowAnalyzer) SampleCount() int { return a.imbalances.Len() }

func classifyRegime(persistence float64) FlowRegime {
	switch {
	case persistence < flowMeanRevertingMax:
		return RegimeMeanReverting
	case persistence > flowTrendingMin:
		return RegimeTrending
	default:
		return RegimeNeutral
	}
}
