package services

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rippin918/hummingbot-daily-auto/internal/analytics"
	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		VPINBucketSize: 10,
		VPINNumBuckets: 5,
		Volatility: analytics.VolatilityConfig{
			WindowPeriods: 20,
			MinPeriods:    5,
		},
		Inventory: analytics.InventoryConfig{
			MaxInventory: 100,
			RiskAversion: 0.1,
			TimeHorizon:  1.0,
		},
		Spread: analytics.SpreadConfig{
			Gamma:       0.1,
			K:           1.5,
			TimeHorizon: 1.0,
		},
		KyleWindow:  50,
		FlowWindow:  100,
		TrendPeriod: 14,
	}
}

func newTestAnalyzer(t *testing.T) *MarketMakingAnalyzer {
	t.Helper()
	a, err := NewMarketMakingAnalyzer("WETH-USDC", "uniswap_v3", testAnalyzerConfig(), testLogger())
	require.NoError(t, err)
	return a
}

func buySwap(price, volume float64) models.SwapEvent {
	return models.SwapEvent{
		Pair:        "WETH-USDC",
		Venue:       "uniswap_v3",
		PriceBefore: decimal.NewFromFloat(price),
		PriceAfter:  decimal.NewFromFloat(price),
		Volume:      decimal.NewFromFloat(volume),
		Side:        models.TradeSideBuy,
	}
}

func TestNewMarketMakingAnalyzer_PropagatesInvalidParameters(t *testing.T) {
	cfg := testAnalyzerConfig()
	cfg.Spread.Gamma = 0

	_, err := NewMarketMakingAnalyzer("WETH-USDC", "uniswap_v3", cfg, testLogger())
	assert.ErrorIs(t, err, analytics.ErrInvalidParameter)
}

func TestBuildSignal_AlwaysEmitsDuringWarmup(t *testing.T) {
	a := newTestAnalyzer(t)

	sig := a.BuildSignal(time.Now())
	assert.Equal(t, models.ActionQuoteNormal, sig.Action)
	assert.Equal(t, 0.0, sig.Confidence)
	assert.Equal(t, "WETH-USDC", sig.Pair)
	assert.NotEmpty(t, sig.Reasoning)
}

func TestBuildSignal_PausesOnToxicFlow(t *testing.T) {
	a := newTestAnalyzer(t)

	// Five fully one-sided buckets: VPIN score 1.0, toxicity high.
	for i := 0; i < 5; i++ {
		a.OnSwap(buySwap(100, 10))
	}

	sig := a.BuildSignal(time.Now())
	assert.Equal(t, models.ActionPause, sig.Action)
	assert.Equal(t, models.RiskHigh, sig.ToxicityRisk)
}

func TestBuildSignal_RebalancesOnInventoryBand(t *testing.T) {
	a := newTestAnalyzer(t)

	err := a.OnInventory(models.InventoryUpdate{Inventory: decimal.NewFromInt(70)})
	require.NoError(t, err)

	sig := a.BuildSignal(time.Now())
	assert.Equal(t, models.ActionRebalance, sig.Action)
	assert.Equal(t, models.RiskHigh, sig.InventoryRisk)
}

func TestBuildSignal_ToxicityOutranksInventory(t *testing.T) {
	a := newTestAnalyzer(t)

	require.NoError(t, a.OnInventory(models.InventoryUpdate{Inventory: decimal.NewFromInt(80)}))
	for i := 0; i < 5; i++ {
		a.OnSwap(buySwap(100, 10))
	}

	sig := a.BuildSignal(time.Now())
	assert.Equal(t, models.ActionPause, sig.Action)
}

func TestOnInventory_BreachRejected(t *testing.T) {
	a := newTestAnalyzer(t)

	err := a.OnInventory(models.InventoryUpdate{Inventory: decimal.NewFromInt(150)})
	assert.ErrorIs(t, err, analytics.ErrRiskLimitBreach)

	// Position unchanged: no rebalance triggered.
	sig := a.BuildSignal(time.Now())
	assert.NotEqual(t, models.ActionRebalance, sig.Action)
}

func TestBuildSignal_FallbackQuotesWithoutVolatility(t *testing.T) {
	a := newTestAnalyzer(t)
	a.OnSwap(buySwap(2000, 1))

	sig := a.BuildSignal(time.Now())
	mid := sig.MidPrice.InexactFloat64()
	require.Equal(t, 2000.0, mid)

	// 10 bps either side of mid.
	assert.InDelta(t, 1998, sig.BidPrice.InexactFloat64(), 1e-9)
	assert.InDelta(t, 2002, sig.AskPrice.InexactFloat64(), 1e-9)
	assert.InDelta(t, 20, sig.SpreadBps.InexactFloat64(), 1e-9)
}

func TestBuildSignal_ModelQuotesBracketMid(t *testing.T) {
	a := newTestAnalyzer(t)
	a.OnSwap(buySwap(100, 1))

	for i := 0; i < 10; i++ {
		c := models.OHLCCandle{
			Open:  decimal.NewFromInt(100),
			High:  decimal.NewFromInt(101),
			Low:   decimal.NewFromInt(99),
			Close: decimal.NewFromInt(100),
		}
		a.OnCandle(c)
	}

	sig := a.BuildSignal(time.Now())
	bid := sig.BidPrice.InexactFloat64()
	ask := sig.AskPrice.InexactFloat64()
	assert.Less(t, bid, 100.0)
	assert.Greater(t, ask, 100.0)
	assert.True(t, sig.SpreadBps.IsPositive())
}

func TestBuildSignal_ConfidenceGrowsWithCoverage(t *testing.T) {
	a := newTestAnalyzer(t)

	cold := a.BuildSignal(time.Now()).Confidence

	for i := 0; i < 5; i++ {
		a.OnSwap(buySwap(100, 10))
	}
	for i := 0; i < 20; i++ {
		a.OnCandle(models.OHLCCandle{
			Open:  decimal.NewFromInt(100),
			High:  decimal.NewFromInt(102),
			Low:   decimal.NewFromInt(98),
			Close: decimal.NewFromInt(100),
		})
	}

	warm := a.BuildSignal(time.Now()).Confidence
	assert.Greater(t, warm, cold)
	assert.LessOrEqual(t, warm, 0.9)
}

func TestSnapshot_ReflectsEstimatorState(t *testing.T) {
	a := newTestAnalyzer(t)

	for i := 0; i < 3; i++ {
		a.OnSwap(buySwap(100, 10))
	}
	require.NoError(t, a.OnInventory(models.InventoryUpdate{Inventory: decimal.NewFromInt(40)}))

	snap := a.Snapshot()
	assert.Equal(t, "WETH-USDC", snap.Pair)
	assert.Equal(t, 100.0, snap.MidPrice)
	assert.InDelta(t, 0.4, snap.Inventory.Ratio, 1e-12)
	assert.Equal(t, analytics.ZonePreferSell, snap.Inventory.Zone)
}
