package services

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/analytics"
	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// fallbackHalfSpreadBps is applied around mid when the volatility model has
// not warmed up and no spread can be derived.
const fallbackHalfSpreadBps = 10.0

// AnalyzerConfig bundles the per-estimator parameters for one analyzer.
type AnalyzerConfig struct {
	VPINBucketSize float64                    `mapstructure:"vpin_bucket_size"`
	VPINNumBuckets int                        `mapstructure:"vpin_num_buckets"`
	Volatility     analytics.VolatilityConfig `mapstructure:"volatility"`
	Inventory      analytics.InventoryConfig  `mapstructure:"inventory"`
	Spread         analytics.SpreadConfig     `mapstructure:"spread"`
	KyleWindow     int                        `mapstructure:"kyle_window"`
	FlowWindow     int                        `mapstructure:"orderflow_window"`
	TrendPeriod    int                        `mapstructure:"trend_period"`
}

// AnalyzerSnapshot is the read side of one analyzer: every estimator's latest
// result plus the last observed mid price.
type AnalyzerSnapshot struct {
	Pair      string                       `json:"pair"`
	Venue     string                       `json:"venue"`
	MidPrice  float64                      `json:"mid_price"`
	VPIN      analytics.VPINResult         `json:"vpin"`
	Vol       analytics.VolatilityEstimate `json:"volatility"`
	Kyle      analytics.KyleLambdaResult   `json:"kyle_lambda"`
	Flow      analytics.OrderflowResult    `json:"orderflow"`
	Inventory analytics.InventoryState     `json:"inventory"`
	Trend     TrendAssessment              `json:"trend"`
}

// MarketMakingAnalyzer owns one instance of every estimator for a single
// (pair, venue) and composes their latest results into a UnifiedMMSignal.
// It is not safe for concurrent use; the orchestrator guarantees a single
// writer per analyzer.
type MarketMakingAnalyzer struct {
	pair  string
	venue string

	vpin      *analytics.VPINEngine
	vol       *analytics.VolatilityEstimator
	inventory *analytics.InventoryTracker
	kyle      *analytics.KyleLambdaEstimator
	spread    *analytics.SpreadCalculator
	flow      *analytics.OrderflowAnalyzer
	trend     *TrendFilter

	lastMid float64
	logger  *logrus.Logger
}

// NewMarketMakingAnalyzer constructs all estimators up front; any invalid
// parameter fails construction rather than being defaulted later.
func NewMarketMakingAnalyzer(pair, venue string, cfg AnalyzerConfig, logger *logrus.Logger) (*MarketMakingAnalyzer, error) {
	vpin, err := analytics.NewVPINEngine(cfg.VPINBucketSize, cfg.VPINNumBuckets)
	if err != nil {
		return nil, fmt.Errorf("vpin engine: %w", err)
	}
	vol, err := analytics.NewVolatilityEstimator(cfg.Volatility)
	if err != nil {
		return nil, fmt.Errorf("volatility estimator: %w", err)
	}
	inv, err := analytics.NewInventoryTracker(cfg.Inventory)
	if err != nil {
		return nil, fmt.Errorf("inventory tracker: %w", err)
	}
	kyle, err := analytics.NewKyleLambdaEstimator(cfg.KyleWindow, nil)
	if err != nil {
		return nil, fmt.Errorf("kyle lambda estimator: %w", err)
	}
	spread, err := analytics.NewSpreadCalculator(cfg.Spread)
	if err != nil {
		return nil, fmt.Errorf("spread calculator: %w", err)
	}
	flow, err := analytics.NewOrderflowAnalyzer(cfg.FlowWindow)
	if err != nil {
		return nil, fmt.Errorf("orderflow analyzer: %w", err)
	}

	return &MarketMakingAnalyzer{
		pair:      pair,
		venue:     venue,
		vpin:      vpin,
		vol:       vol,
		inventory: inv,
		kyle:      kyle,
		spread:    spread,
		flow:      flow,
		trend:     NewTrendFilter(cfg.TrendPeriod),
		logger:    logger,
	}, nil
}

// OnSwap feeds one swap into the VPIN and price-impact estimators and
// refreshes the mid price.
func (a *MarketMakingAnalyzer) OnSwap(ev models.SwapEvent) {
	a.vpin.AddTrade(ev.Volume.InexactFloat64(), ev.Side)
	a.kyle.AddSwap(ev)
	if after := ev.PriceAfter.InexactFloat64(); after > 0 {
		a.lastMid = after
	}
}

// OnCandle feeds one candle into the volatility estimator and trend filter.
func (a *MarketMakingAnalyzer) OnCandle(c models.OHLCCandle) {
	a.vol.AddCandle(c)
	a.trend.AddClose(c.Close.InexactFloat64())
	if cl := c.Close.InexactFloat64(); cl > 0 {
		a.lastMid = cl
	}
}

// OnOrderflow feeds one liquidity snapshot into the regime classifier.
func (a *MarketMakingAnalyzer) OnOrderflow(obs models.OrderflowObservation) {
	a.flow.AddObservation(obs)
}

// OnInventory replaces the tracked position. A breach leaves the previous
// position in place and surfaces as an error for the caller to escalate.
func (a *MarketMakingAnalyzer) OnInventory(upd models.InventoryUpdate) error {
	_, err := a.inventory.SetInventory(upd.Inventory.InexactFloat64())
	if err != nil {
		a.logger.WithFields(logrus.Fields{
			"pair":      a.pair,
			"venue":     a.venue,
			"inventory": upd.Inventory.String(),
		}).Warn("Inventory update rejected: risk limit breach")
	}
	return err
}

// Snapshot returns every estimator's latest result without mutating state.
func (a *MarketMakingAnalyzer) Snapshot() AnalyzerSnapshot {
	sigma := 0.0
	if v := a.vol.Estimate(); v.Status == analytics.StatusOK {
		sigma = v.Recommended
	}
	return AnalyzerSnapshot{
		Pair:      a.pair,
		Venue:     a.venue,
		MidPrice:  a.lastMid,
		VPIN:      a.vpin.Result(),
		Vol:       a.vol.Estimate(),
		Kyle:      a.kyle.Estimate(),
		Flow:      a.flow.Analyze(),
		Inventory: a.inventory.State(sigma),
		Trend:     a.trend.Assess(),
	}
}

// BuildSignal composes the estimators' latest results into a quoting
// decision. It always emits: missing components degrade confidence and fall
// back to conservative quotes instead of blocking.
func (a *MarketMakingAnalyzer) BuildSignal(now time.Time) models.UnifiedMMSignal {
	snap := a.Snapshot()

	sig := models.UnifiedMMSignal{
		Timestamp: now,
		Pair:      a.pair,
		Venue:     a.venue,
		MidPrice:  decimal.NewFromFloat(snap.MidPrice),
	}

	sig.Action, sig.Reasoning = a.decideAction(snap)
	sig.ToxicityRisk = toxicityRisk(snap.VPIN)
	sig.InventoryRisk = inventoryRisk(snap.Inventory)
	sig.LiquidityRisk = liquidityRisk(snap.Kyle, snap.Flow)
	sig.Confidence = composeConfidence(snap)

	bid, ask := a.quotes(snap)
	sig.BidPrice = decimal.NewFromFloat(bid)
	sig.AskPrice = decimal.NewFromFloat(ask)
	if snap.MidPrice > 0 {
		sig.SpreadBps = decimal.NewFromFloat((ask - bid) / snap.MidPrice * 10000)
	}

	if assessment := snap.Trend; assessment.Valid {
		sig.Reasoning = append(sig.Reasoning, fmt.Sprintf("trend filter: rsi=%.1f bias=%s", assessment.RSI, assessment.Bias))
	}

	a.logger.WithFields(logrus.Fields{
		"pair":       a.pair,
		"venue":      a.venue,
		"action":     sig.Action,
		"confidence": sig.Confidence,
	}).Debug("Built market making signal")

	return sig
}

// decideAction applies the fixed priority order: toxicity halt, inventory
// rebalance, then regime-driven spread posture.
func (a *MarketMakingAnalyzer) decideAction(snap AnalyzerSnapshot) (models.SignalAction, []string) {
	var reasons []string

	if snap.VPIN.Status == analytics.StatusOK {
		reasons = append(reasons, fmt.Sprintf("vpin %.3f (%s)", snap.VPIN.Score, snap.VPIN.ToxicityLevel))
		if snap.VPIN.ToxicityLevel == analytics.ToxicityHigh {
			return models.ActionPause, append(reasons, "toxic flow: pausing quotes")
		}
	} else {
		reasons = append(reasons, "vpin warming up")
	}

	zone := snap.Inventory.Zone
	if zone == analytics.ZoneAggressivelyBuy || zone == analytics.ZoneAggressivelySell {
		reasons = append(reasons, fmt.Sprintf("inventory ratio %.2f (%s)", snap.Inventory.Ratio, zone))
		return models.ActionRebalance, append(reasons, "inventory breach imminent: rebalancing")
	}
	if zone != analytics.ZoneNeutral {
		reasons = append(reasons, fmt.Sprintf("inventory ratio %.2f (%s)", snap.Inventory.Ratio, zone))
	}

	switch {
	case snap.Flow.Status == analytics.StatusOK && snap.Flow.Regime == analytics.RegimeMeanReverting:
		reasons = append(reasons, fmt.Sprintf("mean reverting flow (persistence %.2f): tightening", snap.Flow.Persistence))
		return models.ActionQuoteTight, reasons
	case snap.Flow.Status == analytics.StatusOK && snap.Flow.Regime == analytics.RegimeTrending:
		reasons = append(reasons, fmt.Sprintf("trending flow (persistence %.2f): widening", snap.Flow.Persistence))
		return models.ActionQuoteWide, reasons
	case snap.Flow.Status == analytics.StatusNonStationary:
		reasons = append(reasons, "orderflow fit non-stationary")
	}

	return models.ActionQuoteNormal, reasons
}

// quotes derives bid/ask from the reservation price and the optimal spread,
// widened by the price-impact multiplier. Without a usable volatility
// estimate it falls back to a fixed band around mid.
func (a *MarketMakingAnalyzer) quotes(snap AnalyzerSnapshot) (bid, ask float64) {
	mid := snap.MidPrice
	if mid <= 0 {
		return 0, 0
	}
	if snap.Vol.Status != analytics.StatusOK {
		half := mid * fallbackHalfSpreadBps / 10000
		return mid - half, mid + half
	}

	sigma := snap.Vol.Recommended
	reservation := a.inventory.ReservationPrice(mid, sigma)
	q := a.spread.Quotes(reservation, sigma, snap.Kyle.SpreadMultiplier)
	return q.Bid, q.Ask
}

// composeConfidence averages the available component confidences; missing
// components contribute nothing and cap the result by coverage.
func composeConfidence(snap AnalyzerSnapshot) float64 {
	var parts []float64
	if snap.VPIN.Status == analytics.StatusOK {
		parts = append(parts, snap.VPIN.Confidence)
	}
	if snap.Vol.Status == analytics.StatusOK {
		parts = append(parts, snap.Vol.Confidence)
	}
	if snap.Kyle.Status == analytics.StatusOK {
		parts = append(parts, snap.Kyle.RSquared)
	}
	if snap.Flow.Status == analytics.StatusOK {
		parts = append(parts, math.Min(math.Abs(snap.Flow.Persistence-0.5)*2, 1.0))
	}
	if len(parts) == 0 {
		return 0
	}

	sum := 0.0
	for _, p := range parts {
		sum += p
	}
	mean := sum / float64(len(parts))

	const totalComponents = 4
	fill := float64(len(parts)) / totalComponents
	return math.Min(mean, 0.9*fill)
}

func toxicityRisk(v analytics.VPINResult) models.RiskLevel {
	if v.Status != analytics.StatusOK {
		return models.RiskMedium
	}
	switch v.ToxicityLevel {
	case analytics.ToxicityHigh:
		return models.RiskHigh
	case analytics.ToxicityElevated:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func inventoryRisk(st analytics.InventoryState) models.RiskLevel {
	ratio := math.Abs(st.Ratio)
	switch {
	case ratio >= 0.7:
		return models.RiskHigh
	case ratio >= 0.3:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

func liquidityRisk(k analytics.KyleLambdaResult, f analytics.OrderflowResult) models.RiskLevel {
	if k.Status == analytics.StatusOK && k.SpreadMultiplier >= 2.5 {
		return models.RiskHigh
	}
	if k.Status == analytics.StatusOK && k.SpreadMultiplier >= 1.5 {
		return models.RiskMedium
	}
	if f.Status == analytics.StatusOK && f.Regime == analytics.RegimeTrending {
		return models.RiskMedium
	}
	return models.RiskLow
}
