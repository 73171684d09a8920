package services

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
)

// TrendBias is the directional read of the technical confirmation layer.
type TrendBias string

const (
	BiasBullish TrendBias = "bullish"
	BiasBearish TrendBias = "bearish"
	BiasNeutral TrendBias = "neutral"
)

const defaultTrendPeriod = 14

// TrendAssessment is the latest RSI/SMA read over the close series. Valid is
// false until enough closes have accumulated for both indicators.
type TrendAssessment struct {
	Valid bool      `json:"valid"`
	RSI   float64   `json:"rsi"`
	SMA   float64   `json:"sma"`
	Close float64   `json:"close"`
	Bias  TrendBias `json:"bias"`
}

// TrendFilter contributes RSI and SMA context to the composed signal's
// reasoning. It confirms or flags the regime read but never overrides the
// priority action order.
type TrendFilter struct {
	period int
	closes []float64
}

// NewTrendFilter creates a filter with the given indicator period;
// non-positive periods fall back to the default.
func NewTrendFilter(period int) *TrendFilter {
	if period <= 0 {
		period = defaultTrendPeriod
	}
	return &TrendFilter{period: period}
}

// AddClose appends one close price, keeping a bounded history.
func (f *TrendFilter) AddClose(close float64) {
	if close <= 0 {
		return
	}
	f.closes = append(f.closes, close)
	if limit := f.period * 4; len(f.closes) > limit {
		f.closes = f.closes[len(f.closes)-limit:]
	}
}

// Assess computes RSI and SMA over the accumulated closes.
func (f *TrendFilter) Assess() TrendAssessment {
	if len(f.closes) <= f.period {
		return TrendAssessment{Bias: BiasNeutral}
	}

	sma := trend.NewSmaWithPeriod[float64](f.period)
	smaValues := helper.ChanToSlice(sma.Compute(helper.SliceToChan(f.closes)))

	rsi := momentum.NewRsiWithPeriod[float64](f.period)
	rsiValues := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(f.closes)))

	if len(smaValues) == 0 || len(rsiValues) == 0 {
		return TrendAssessment{Bias: BiasNeutral}
	}

	last := f.closes[len(f.closes)-1]
	out := TrendAssessment{
		Valid: true,
		RSI:   rsiValues[len(rsiValues)-1],
		SMA:   smaValues[len(smaValues)-1],
		Close: last,
	}
	switch {
	case last > out.SMA && out.RSI < 70:
		out.Bias = BiasBullish
	case last < out.SMA && out.RSI > 30:
		out.Bias = BiasBearish
	default:
		out.Bias = BiasNeutral
	}
	return out
}
