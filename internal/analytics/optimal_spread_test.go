package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpreadCalculator(t *testing.T) *SpreadCalculator {
	t.Helper()
	calc, err := NewSpreadCalculator(SpreadConfig{Gamma: 0.1, K: 1.5, TimeHorizon: 1.0})
	require.NoError(t, err)
	return calc
}

func TestNewSpreadCalculator_InvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpreadConfig
	}{
		{"zero gamma", SpreadConfig{Gamma: 0, K: 1.5, TimeHorizon: 1}},
		{"negative gamma", SpreadConfig{Gamma: -0.1, K: 1.5, TimeHorizon: 1}},
		{"zero k", SpreadConfig{Gamma: 0.1, K: 0, TimeHorizon: 1}},
		{"zero horizon", SpreadConfig{Gamma: 0.1, K: 1.5, TimeHorizon: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpreadCalculator(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestSpreadCalculator_ZeroVolatilityKeepsLiquidityTerm(t *testing.T) {
	calc := newTestSpreadCalculator(t)

	want := (2 / 0.1) * math.Log(1+0.1/1.5)
	assert.InDelta(t, want, calc.OptimalSpread(0), 1e-12)
	assert.Greater(t, calc.OptimalSpread(0), 0.0)
}

func TestSpreadCalculator_SpreadGrowsWithVolatility(t *testing.T) {
	calc := newTestSpreadCalculator(t)

	prev := calc.OptimalSpread(0)
	for _, sigma := range []float64{0.1, 0.5, 1.0, 2.0} {
		s := calc.OptimalSpread(sigma)
		assert.Greater(t, s, prev, "sigma %f", sigma)
		prev = s
	}
}

func TestSpreadCalculator_ClosedForm(t *testing.T) {
	calc := newTestSpreadCalculator(t)

	sigma := 0.5
	want := 0.1*sigma*sigma*1.0 + (2/0.1)*math.Log(1+0.1/1.5)
	assert.InDelta(t, want, calc.OptimalSpread(sigma), 1e-12)
}

func TestSpreadCalculator_QuotesSymmetricAroundReservation(t *testing.T) {
	calc := newTestSpreadCalculator(t)

	q := calc.Quotes(100, 0.5, 1)
	assert.InDelta(t, 100-q.Bid, q.Ask-100, 1e-12)
	assert.InDelta(t, q.Spread, q.Ask-q.Bid, 1e-12)
	assert.InDelta(t, q.Spread/100*10000, q.SpreadBps, 1e-9)
	assert.Less(t, q.Bid, q.Ask)
}

func TestSpreadCalculator_MultiplierWidensQuotes(t *testing.T) {
	calc := newTestSpreadCalculator(t)

	base := calc.Quotes(100, 0.5, 1)
	wide := calc.Quotes(100, 0.5, 2)
	assert.InDelta(t, base.Spread*2, wide.Spread, 1e-12)

	// Non-positive multipliers fall back to 1.
	fallback := calc.Quotes(100, 0.5, 0)
	assert.InDelta(t, base.Spread, fallback.Spread, 1e-12)
}
