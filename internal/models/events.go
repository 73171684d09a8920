package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeSide identifies the aggressor side of a swap.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// SwapEvent represents a single DEX swap observed by the ingestion layer.
// Events are immutable once created; the analytics core never mutates them.
type SwapEvent struct {
	Timestamp   time.Time       `json:"timestamp"`
	Venue       string          `json:"venue"`
	Pair        string          `json:"pair"`
	PriceBefore decimal.Decimal `json:"price_before"`
	PriceAfter  decimal.Decimal `json:"price_after"`
	Volume      decimal.Decimal `json:"volume"`
	Side        TradeSide       `json:"side"`
}

// OHLCCandle represents one aggregated price candle.
type OHLCCandle struct {
	Timestamp time.Time       `json:"timestamp"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Period    time.Duration   `json:"period"`
}

// OrderflowObservation captures one snapshot of resting liquidity on both
// sides of the book (or tick distribution, for concentrated-liquidity venues).
type OrderflowObservation struct {
	Timestamp    time.Time       `json:"timestamp"`
	BidLiquidity decimal.Decimal `json:"bid_liquidity"`
	AskLiquidity decimal.Decimal `json:"ask_liquidity"`
}

// InventoryUpdate reports the market maker's current position for a pair.
type InventoryUpdate struct {
	Timestamp time.Time       `json:"timestamp"`
	Inventory decimal.Decimal `json:"inventory"`
}
