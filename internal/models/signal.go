package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalAction is the quoting decision emitted for a (pair, venue).
type SignalAction string

const (
	ActionQuoteTight   SignalAction = "quote_tight"
	ActionQuoteNormal  SignalAction = "quote_normal"
	ActionQuoteWide    SignalAction = "quote_wide"
	ActionPause        SignalAction = "pause"
	ActionRebalance    SignalAction = "rebalance_inventory"
)

// RiskLevel grades a single risk dimension of a signal.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// UnifiedMMSignal is the composed market-making decision for one (pair, venue).
// It is always emitted, even when some estimators are still warming up; missing
// components degrade confidence and widen quotes rather than blocking output.
type UnifiedMMSignal struct {
	Timestamp time.Time `json:"timestamp"`
	Pair      string    `json:"pair"`
	Venue     string    `json:"venue"`

	MidPrice  decimal.Decimal `json:"mid_price"`
	BidPrice  decimal.Decimal `json:"bid_price"`
	AskPrice  decimal.Decimal `json:"ask_price"`
	SpreadBps decimal.Decimal `json:"spread_bps"`

	Action     SignalAction `json:"action"`
	Confidence float64      `json:"confidence"`
	Reasoning  []string     `json:"reasoning"`

	ToxicityRisk  RiskLevel `json:"toxicity_risk"`
	InventoryRisk RiskLevel `json:"inventory_risk"`
	LiquidityRisk RiskLevel `json:"liquidity_risk"`
}
