package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rippin918/hummingbot-daily-auto/internal/venues"
)

func testAggregator() *CrossVenueAggregator {
	return NewCrossVenueAggregator(CrossVenueConfig{
		MinProfitBps: decimal.NewFromInt(20),
		MaxQuoteAge:  time.Minute,
		MaxRouteSize: decimal.NewFromInt(1000),
	}, testLogger())
}

func TestQuotePoller_PollOnceFeedsAggregator(t *testing.T) {
	registry := venues.NewRegistry()
	venueA := venues.NewStaticVenue("venue_a")
	venueA.SetQuote("WETH-USDC", decimal.NewFromFloat(99.90), decimal.NewFromInt(100), decimal.NewFromInt(50))
	registry.Register(venueA)
	registry.Register(venues.NewStaticVenue("venue_b")) // no quote yet

	agg := testAggregator()
	poller := NewQuotePoller(registry, agg, []string{"WETH-USDC"}, 0, testLogger())

	poller.PollOnce(context.Background())

	view := agg.LiquidityView("WETH-USDC")
	require.Equal(t, 1, view.VenueCount)
	assert.Equal(t, "venue_a", view.MostLiquidDex)

	matrix, ok := agg.SpreadMatrix("WETH-USDC")
	require.True(t, ok)
	assert.Equal(t, "venue_a", matrix.BestBidDex)
}

func TestQuotePoller_StartPollsOnInterval(t *testing.T) {
	registry := venues.NewRegistry()
	venueA := venues.NewStaticVenue("venue_a")
	venueA.SetQuote("WETH-USDC", decimal.NewFromFloat(99.90), decimal.NewFromInt(100), decimal.NewFromInt(50))
	registry.Register(venueA)

	agg := testAggregator()
	poller := NewQuotePoller(registry, agg, []string{"WETH-USDC"}, 5*time.Millisecond, testLogger())

	poller.Start()
	defer poller.Stop()

	require.Eventually(t, func() bool {
		return agg.LiquidityView("WETH-USDC").VenueCount == 1
	}, 2*time.Second, 5*time.Millisecond)

	// A fresher snapshot shows up after the next tick.
	venueA.SetQuote("WETH-USDC", decimal.NewFromFloat(101.90), decimal.NewFromInt(102), decimal.NewFromInt(80))
	require.Eventually(t, func() bool {
		matrix, ok := agg.SpreadMatrix("WETH-USDC")
		return ok && matrix.BestBid.Equal(decimal.NewFromFloat(101.90))
	}, 2*time.Second, 5*time.Millisecond)
}

func TestQuotePoller_StopIsIdempotent(t *testing.T) {
	poller := NewQuotePoller(venues.NewRegistry(), testAggregator(), nil, time.Second, testLogger())
	poller.Stop()

	poller.Start()
	poller.Stop()
	poller.Stop()
}
