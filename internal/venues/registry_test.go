package venues

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(NewStaticVenue("uniswap_v3"))
	r.Register(NewStaticVenue("sushiswap"))

	v, err := r.Get("uniswap_v3")
	require.NoError(t, err)
	assert.Equal(t, "uniswap_v3", v.Name())

	_, err = r.Get("curve")
	assert.ErrorIs(t, err, ErrUnknownVenue)

	assert.Equal(t, []string{"sushiswap", "uniswap_v3"}, r.Names())
}

func TestRegistry_ReplaceOnReRegister(t *testing.T) {
	r := NewRegistry()

	first := NewStaticVenue("uniswap_v3")
	first.SetQuote("WETH-USDC", decimal.NewFromInt(99), decimal.NewFromInt(101), decimal.NewFromInt(10))
	r.Register(first)

	second := NewStaticVenue("uniswap_v3")
	second.SetQuote("WETH-USDC", decimal.NewFromInt(100), decimal.NewFromInt(102), decimal.NewFromInt(20))
	r.Register(second)

	v, err := r.Get("uniswap_v3")
	require.NoError(t, err)
	q, err := v.FetchQuote(context.Background(), "WETH-USDC")
	require.NoError(t, err)
	assert.True(t, q.Bid.Equal(decimal.NewFromInt(100)))
	assert.Len(t, r.All(), 1)
}

func TestStaticVenue_QuoteRoundTrip(t *testing.T) {
	v := NewStaticVenue("uniswap_v3")
	v.SetQuote("WETH-USDC", decimal.NewFromFloat(1999.5), decimal.NewFromFloat(2000.5), decimal.NewFromInt(50))

	q, err := v.FetchQuote(context.Background(), "WETH-USDC")
	require.NoError(t, err)
	assert.Equal(t, "uniswap_v3", q.Venue)
	assert.True(t, q.Mid().Equal(decimal.NewFromInt(2000)))
	assert.False(t, q.Timestamp.IsZero())

	_, err = v.FetchQuote(context.Background(), "WBTC-USDC")
	assert.Error(t, err)
}

func TestStaticVenue_DepthIsCopied(t *testing.T) {
	v := NewStaticVenue("uniswap_v3")
	v.SetDepth("WETH-USDC", []LiquidityBand{{PriceLow: 1990, PriceHigh: 2010, Liquidity: 100}})

	bands, err := v.FetchLiquidityDistribution(context.Background(), "WETH-USDC")
	require.NoError(t, err)
	require.Len(t, bands, 1)

	bands[0].Liquidity = 0
	again, err := v.FetchLiquidityDistribution(context.Background(), "WETH-USDC")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again[0].Liquidity)
}
