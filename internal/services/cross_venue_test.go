package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

func testCrossVenueConfig() CrossVenueConfig {
	return CrossVenueConfig{
		MinProfitBps: decimal.NewFromInt(20),
		MaxQuoteAge:  30 * time.Second,
		MaxRouteSize: decimal.NewFromInt(1000),
	}
}

func newTestAggregator() *CrossVenueAggregator {
	return NewCrossVenueAggregator(testCrossVenueConfig(), testLogger())
}

func quote(venue string, bid, ask, liquidity float64, ts time.Time) models.DEXQuote {
	return models.DEXQuote{
		Venue:     venue,
		Pair:      "WETH-USDC",
		Bid:       decimal.NewFromFloat(bid),
		Ask:       decimal.NewFromFloat(ask),
		Liquidity: decimal.NewFromFloat(liquidity),
		Timestamp: ts,
	}
}

func TestCrossVenue_ArbitrageDetection(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	// Venue A asks 100.00, venue B bids 100.50: 50 bps gross.
	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, now))
	agg.UpdateQuote(quote("venue_b", 100.50, 100.60, 80, now))

	opps := agg.FindArbitrage("WETH-USDC")
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, "venue_a", opp.BuyDex)
	assert.Equal(t, "venue_b", opp.SellDex)
	assert.True(t, opp.BuyPrice.LessThan(opp.SellPrice))
	assert.InDelta(t, 0.5, opp.GrossProfitPct.InexactFloat64(), 1e-9)
	assert.InDelta(t, 50, opp.SizeAvailable.InexactFloat64(), 1e-9)
	assert.NotEmpty(t, opp.ID)
}

func TestCrossVenue_ProfitGateFiltersThinEdges(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	// Only 10 bps apart: below the 20 bps gate.
	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, now))
	agg.UpdateQuote(quote("venue_b", 100.10, 100.20, 80, now))

	assert.Empty(t, agg.FindArbitrage("WETH-USDC"))
}

func TestCrossVenue_CostEstimateReducesNet(t *testing.T) {
	cfg := testCrossVenueConfig()
	cfg.CostEstimateBps = decimal.NewFromInt(40)
	agg := NewCrossVenueAggregator(cfg, testLogger())
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, now))
	agg.UpdateQuote(quote("venue_b", 100.50, 100.60, 80, now))

	// 50 bps gross - 40 bps cost = 10 bps net, below the gate.
	assert.Empty(t, agg.FindArbitrage("WETH-USDC"))
}

func TestCrossVenue_ZeroLiquidityNeverOpportunity(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 0, now))
	agg.UpdateQuote(quote("venue_b", 100.50, 100.60, 80, now))

	assert.Empty(t, agg.FindArbitrage("WETH-USDC"))
}

func TestCrossVenue_StaleQuotesExcluded(t *testing.T) {
	agg := newTestAggregator()
	base := time.Now()
	agg.now = func() time.Time { return base }

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, base.Add(-time.Minute)))
	agg.UpdateQuote(quote("venue_b", 100.50, 100.60, 80, base))

	assert.Empty(t, agg.FindArbitrage("WETH-USDC"))

	view := agg.LiquidityView("WETH-USDC")
	assert.Equal(t, 1, view.VenueCount)

	// Refreshing the stale venue restores coverage.
	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, base))
	assert.Len(t, agg.FindArbitrage("WETH-USDC"), 1)
}

func TestCrossVenue_SpreadMatrix(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.10, 50, now))
	agg.UpdateQuote(quote("venue_b", 99.95, 100.05, 80, now))

	matrix, ok := agg.SpreadMatrix("WETH-USDC")
	require.True(t, ok)
	assert.Equal(t, "venue_b", matrix.BestBidDex)
	assert.Equal(t, "venue_b", matrix.BestAskDex)
	assert.InDelta(t, 99.95, matrix.BestBid.InexactFloat64(), 1e-9)
	assert.InDelta(t, 100.05, matrix.BestAsk.InexactFloat64(), 1e-9)
	assert.True(t, matrix.NBBOSpreadBps.IsPositive())
	assert.Len(t, matrix.Venues, 2)
}

func TestCrossVenue_CrossedMarketNegativeNBBO(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, now))
	agg.UpdateQuote(quote("venue_b", 100.50, 100.60, 80, now))

	matrix, ok := agg.SpreadMatrix("WETH-USDC")
	require.True(t, ok)
	assert.True(t, matrix.NBBOSpreadBps.IsNegative(), "crossed venues must yield a negative NBBO spread")
}

func TestCrossVenue_SpreadMatrixEmptyWithoutQuotes(t *testing.T) {
	agg := newTestAggregator()
	_, ok := agg.SpreadMatrix("WETH-USDC")
	assert.False(t, ok)
}

func TestCrossVenue_LiquidityView(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.10, 300, now))
	agg.UpdateQuote(quote("venue_b", 99.95, 100.05, 700, now))

	view := agg.LiquidityView("WETH-USDC")
	assert.InDelta(t, 1000, view.TotalLiquidity.InexactFloat64(), 1e-9)
	assert.Equal(t, "venue_b", view.MostLiquidDex)
	assert.Equal(t, 2, view.VenueCount)
	assert.InDelta(t, 300, view.ByVenue["venue_a"].InexactFloat64(), 1e-9)
}

func TestCrossVenue_BestExecutionRoute(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	// Buy 10: 6 from venue_a at 100, 4 from venue_b at 101.
	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 6, now))
	agg.UpdateQuote(quote("venue_b", 100.90, 101.00, 50, now))

	route := agg.BestExecutionRoute("WETH-USDC", models.TradeSideBuy, decimal.NewFromInt(10))
	require.Len(t, route.Legs, 2)
	assert.Equal(t, "venue_a", route.Legs[0].Venue)
	assert.InDelta(t, 6, route.Legs[0].Size.InexactFloat64(), 1e-9)
	assert.Equal(t, "venue_b", route.Legs[1].Venue)
	assert.InDelta(t, 4, route.Legs[1].Size.InexactFloat64(), 1e-9)
	assert.InDelta(t, 100.4, route.AvgPrice.InexactFloat64(), 1e-9)
	assert.True(t, route.Unfilled.IsZero())
}

func TestCrossVenue_RouteReportsUnfilledRemainder(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 3, now))

	route := agg.BestExecutionRoute("WETH-USDC", models.TradeSideBuy, decimal.NewFromInt(10))
	assert.InDelta(t, 3, route.FilledSize.InexactFloat64(), 1e-9)
	assert.InDelta(t, 7, route.Unfilled.InexactFloat64(), 1e-9)
}

func TestCrossVenue_SellRoutePrefersBestBid(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.00, 50, now))
	agg.UpdateQuote(quote("venue_b", 100.10, 100.20, 50, now))

	route := agg.BestExecutionRoute("WETH-USDC", models.TradeSideSell, decimal.NewFromInt(5))
	require.Len(t, route.Legs, 1)
	assert.Equal(t, "venue_b", route.Legs[0].Venue)
	assert.InDelta(t, 100.10, route.AvgPrice.InexactFloat64(), 1e-9)
}

func TestCrossVenue_QuoteReplacedWholesale(t *testing.T) {
	agg := newTestAggregator()
	now := time.Now()

	agg.UpdateQuote(quote("venue_a", 99.90, 100.10, 50, now))
	agg.UpdateQuote(quote("venue_a", 99.50, 99.70, 20, now))

	matrix, ok := agg.SpreadMatrix("WETH-USDC")
	require.True(t, ok)
	assert.InDelta(t, 99.50, matrix.BestBid.InexactFloat64(), 1e-9)
	assert.InDelta(t, 99.70, matrix.BestAsk.InexactFloat64(), 1e-9)
}
