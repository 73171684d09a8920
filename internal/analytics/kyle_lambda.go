package analytics

import (
	"fmt"
	"math"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// kyleMinSamples is the minimum number of (return, signed volume) pairs
// before the regression is considered meaningful.
const kyleMinSamples = 10

// KyleLambdaResult is the price-impact regression for one (pair, venue).
// Lambda is the slope of relative price change on signed volume; RSquared
// grades how much of the price variance order flow explains.
type KyleLambdaResult struct {
	Status           Status  `json:"status"`
	Lambda           float64 `json:"lambda"`
	RSquared         float64 `json:"r_squared"`
	SampleCount      int     `json:"sample_count"`
	SpreadMultiplier float64 `json:"spread_multiplier"`
}

// SpreadMultiplierFunc maps a fitted lambda onto a spread widening factor.
type SpreadMultiplierFunc func(lambda float64) float64

// DefaultSpreadMultiplier clamps |lambda| * 100 into [1, 3].
func DefaultSpreadMultiplier(lambda float64) float64 {
	m := math.Abs(lambda) * 100
	if m < 1 {
		return 1
	}
	if m > 3 {
		return 3
	}
	return m
}

type impactSample struct {
	ret          float64
	signedVolume float64
}

// KyleLambdaEstimator regresses per-trade relative price changes on signed
// trade volume over a rolling window, following Kyle (1985). A steeper slope
// means the book absorbs flow poorly and quotes should widen.
type KyleLambdaEstimator struct {
	samples    *ring[impactSample]
	multiplier SpreadMultiplierFunc
}

// NewKyleLambdaEstimator creates an estimator over a window of the given
// size. A nil multiplier falls back to DefaultSpreadMultiplier.
func NewKyleLambdaEstimator(window int, multiplier SpreadMultiplierFunc) (*KyleLambdaEstimator, error) {
	if window < kyleMinSamples {
		return nil, fmt.Errorf("%w: window must be at least %d, got %d", ErrInvalidParameter, kyleMinSamples, window)
	}
	if multiplier == nil {
		multiplier = DefaultSpreadMultiplier
	}
	return &KyleLambdaEstimator{
		samples:    newRing[impactSample](window),
		multiplier: multiplier,
	}, nil
}

// AddSwap records one swap's relative price change and signed volume. Swaps
// with a non-positive pre-trade price or non-positive volume are ignored.
func (k *KyleLambdaEstimator) AddSwap(ev models.SwapEvent) {
	before := ev.PriceBefore.InexactFloat64()
	after := ev.PriceAfter.InexactFloat64()
	volume := ev.Volume.InexactFloat64()
	if before <= 0 || volume <= 0 {
		return
	}
	signed := volume
	if ev.Side == models.TradeSideSell {
		signed = -volume
	}
	k.samples.Push(impactSample{
		ret:          (after - before) / before,
		signedVolume: signed,
	})
}

// Estimate fits the OLS slope lambda = Cov(ret, signedVolume) / Var(signedVolume)
// over the current window.
func (k *KyleLambdaEstimator) Estimate() KyleLambdaResult {
	n := k.samples.Len()
	if n < kyleMinSamples {
		return KyleLambdaResult{
			Status:           StatusInsufficientData,
			SampleCount:      n,
			SpreadMultiplier: 1,
		}
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		s := k.samples.At(i)
		meanX += s.signedVolume
		meanY += s.ret
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX float64
	for i := 0; i < n; i++ {
		s := k.samples.At(i)
		dx := s.signedVolume - meanX
		cov += dx * (s.ret - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return KyleLambdaResult{
			Status:           StatusInsufficientData,
			SampleCount:      n,
			SpreadMultiplier: 1,
		}
	}

	lambda := cov / varX
	intercept := meanY - lambda*meanX

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		s := k.samples.At(i)
		resid := s.ret - (intercept + lambda*s.signedVolume)
		ssRes += resid * resid
		dy := s.ret - meanY
		ssTot += dy * dy
	}
	r2 := 0.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
		if r2 < 0 {
			r2 = 0
		} else if r2 > 1 {
			r2 = 1
		}
	}

	return KyleLambdaResult{
		Status:           StatusOK,
		Lambda:           lambda,
		RSquared:         r2,
		SampleCount:      n,
		SpreadMultiplier: k.multiplier(lambda),
	}
}

// SampleCount returns the number of windowed samples.
func (k *KyleLambdaEstimator) SampleCount() int { return k.samples.Len() }
