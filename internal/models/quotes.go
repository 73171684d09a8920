package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DEXQuote is the latest two-sided quote published by a venue for a pair.
// The cross-venue aggregator keeps exactly one per (venue, pair) and replaces
// it wholesale on every update; quotes older than the configured max age are
// excluded from aggregation.
type DEXQuote struct {
	Venue     string          `json:"venue"`
	Pair      string          `json:"pair"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Liquidity decimal.Decimal `json:"liquidity"`
	Timestamp time.Time       `json:"timestamp"`
}

// Mid returns the quote midpoint.
func (q DEXQuote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2))
}

// ArbitrageOpportunity represents a detected cross-venue arbitrage.
// Invariant: BuyPrice < SellPrice.
type ArbitrageOpportunity struct {
	ID             string          `json:"id"`
	Pair           string          `json:"pair"`
	BuyDex         string          `json:"buy_dex"`
	SellDex        string          `json:"sell_dex"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	SellPrice      decimal.Decimal `json:"sell_price"`
	GrossProfitPct decimal.Decimal `json:"gross_profit_pct"`
	NetProfitPct   decimal.Decimal `json:"net_profit_pct"`
	SizeAvailable  decimal.Decimal `json:"size_available"`
	DetectedAt     time.Time       `json:"detected_at"`
}

// VenueSpread describes how far a venue's quote sits from the cross-venue best.
type VenueSpread struct {
	Venue      string          `json:"venue"`
	Bid        decimal.Decimal `json:"bid"`
	Ask        decimal.Decimal `json:"ask"`
	BidDiffBps decimal.Decimal `json:"bid_diff_bps"`
	AskDiffBps decimal.Decimal `json:"ask_diff_bps"`
}

// SpreadMatrix is the cross-venue best bid/offer view for a pair.
// NBBOSpreadBps is negative when the market is crossed (arbable).
type SpreadMatrix struct {
	Pair          string          `json:"pair"`
	BestBid       decimal.Decimal `json:"best_bid"`
	BestBidDex    string          `json:"best_bid_dex"`
	BestAsk       decimal.Decimal `json:"best_ask"`
	BestAskDex    string          `json:"best_ask_dex"`
	NBBOSpreadBps decimal.Decimal `json:"nbbo_spread_bps"`
	Venues        []VenueSpread   `json:"venues"`
	Timestamp     time.Time       `json:"timestamp"`
}

// LiquidityView aggregates fresh liquidity across venues for a pair.
type LiquidityView struct {
	Pair           string                     `json:"pair"`
	TotalLiquidity decimal.Decimal            `json:"total_liquidity"`
	ByVenue        map[string]decimal.Decimal `json:"by_venue"`
	MostLiquidDex  string                     `json:"most_liquid_dex"`
	VenueCount     int                        `json:"venue_count"`
	Timestamp      time.Time                  `json:"timestamp"`
}

// RouteLeg is a single fill on one venue within an execution route.
type RouteLeg struct {
	Venue string          `json:"venue"`
	Size  decimal.Decimal `json:"size"`
	Price decimal.Decimal `json:"price"`
}

// ExecutionRoute is a greedy best-price routing plan across venues.
// Invariants: the sum of leg sizes never exceeds RequestedSize, and each
// leg never exceeds the venue's available depth at routing time. An
// unfillable remainder is reported, not treated as an error.
type ExecutionRoute struct {
	Pair          string          `json:"pair"`
	Side          TradeSide       `json:"side"`
	RequestedSize decimal.Decimal `json:"requested_size"`
	FilledSize    decimal.Decimal `json:"filled_size"`
	Unfilled      decimal.Decimal `json:"unfilled"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	Legs          []RouteLeg      `json:"legs"`
	Timestamp     time.Time       `json:"timestamp"`
}
