package services

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

var (
	decimalHundred     = decimal.NewFromInt(100)
	decimalTenThousand = decimal.NewFromInt(10000)
)

// CrossVenueConfig configures the aggregator's freshness and profit gates.
type CrossVenueConfig struct {
	MinProfitBps    decimal.Decimal `mapstructure:"min_profit_bps"`
	CostEstimateBps decimal.Decimal `mapstructure:"cost_estimate_bps"`
	MaxQuoteAge     time.Duration   `mapstructure:"max_quote_age"`
	MaxRouteSize    decimal.Decimal `mapstructure:"max_route_size"`
}

type quoteKey struct {
	Venue string
	Pair  string
}

// CrossVenueAggregator keeps the latest quote per (venue, pair) and serves
// spread matrices, arbitrage scans, liquidity views and routing plans over
// the fresh subset. Quotes are replaced wholesale; staleness is evaluated on
// every read, never by a background sweeper.
type CrossVenueAggregator struct {
	cfg    CrossVenueConfig
	logger *logrus.Logger

	mu     sync.RWMutex
	quotes map[quoteKey]models.DEXQuote

	// now is swappable for freshness tests.
	now func() time.Time
}

// NewCrossVenueAggregator creates an empty aggregator.
func NewCrossVenueAggregator(cfg CrossVenueConfig, logger *logrus.Logger) *CrossVenueAggregator {
	return &CrossVenueAggregator{
		cfg:    cfg,
		logger: logger,
		quotes: make(map[quoteKey]models.DEXQuote),
		now:    time.Now,
	}
}

// UpdateQuote replaces the venue's quote for the pair. Later updates fully
// supersede earlier ones.
func (c *CrossVenueAggregator) UpdateQuote(q models.DEXQuote) {
	c.mu.Lock()
	c.quotes[quoteKey{Venue: q.Venue, Pair: q.Pair}] = q
	c.mu.Unlock()
}

// freshQuotes returns the non-stale quotes for a pair. Stale venues are
// silently excluded; callers see reduced coverage through VenueCount.
func (c *CrossVenueAggregator) freshQuotes(pair string) []models.DEXQuote {
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.DEXQuote
	for key, q := range c.quotes {
		if key.Pair != pair {
			continue
		}
		if c.cfg.MaxQuoteAge > 0 && now.Sub(q.Timestamp) > c.cfg.MaxQuoteAge {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Venue < out[j].Venue })
	return out
}

// SpreadMatrix builds the cross-venue best bid/offer view for a pair. The
// NBBO spread is (bestAsk-bestBid)/mid in bps and is negative when venues
// cross. The second return is false when no fresh quotes exist.
func (c *CrossVenueAggregator) SpreadMatrix(pair string) (models.SpreadMatrix, bool) {
	quotes := c.freshQuotes(pair)
	if len(quotes) == 0 {
		return models.SpreadMatrix{}, false
	}

	matrix := models.SpreadMatrix{
		Pair:      pair,
		BestBid:   quotes[0].Bid,
		BestAsk:   quotes[0].Ask,
		Timestamp: c.now(),
	}
	matrix.BestBidDex = quotes[0].Venue
	matrix.BestAskDex = quotes[0].Venue
	for _, q := range quotes[1:] {
		if q.Bid.GreaterThan(matrix.BestBid) {
			matrix.BestBid = q.Bid
			matrix.BestBidDex = q.Venue
		}
		if q.Ask.LessThan(matrix.BestAsk) {
			matrix.BestAsk = q.Ask
			matrix.BestAskDex = q.Venue
		}
	}

	mid := matrix.BestBid.Add(matrix.BestAsk).Div(decimal.NewFromInt(2))
	if mid.IsPositive() {
		matrix.NBBOSpreadBps = matrix.BestAsk.Sub(matrix.BestBid).Div(mid).Mul(decimalTenThousand)
	}

	for _, q := range quotes {
		vs := models.VenueSpread{Venue: q.Venue, Bid: q.Bid, Ask: q.Ask}
		if matrix.BestBid.IsPositive() {
			vs.BidDiffBps = q.Bid.Sub(matrix.BestBid).Div(matrix.BestBid).Mul(decimalTenThousand)
		}
		if matrix.BestAsk.IsPositive() {
			vs.AskDiffBps = q.Ask.Sub(matrix.BestAsk).Div(matrix.BestAsk).Mul(decimalTenThousand)
		}
		matrix.Venues = append(matrix.Venues, vs)
	}
	return matrix, true
}

// FindArbitrage scans ordered venue pairs for executable dislocations: buy
// at one venue's ask, sell at another's bid, net of the configured cost
// estimate, above the minimum profit gate and with positive available size.
func (c *CrossVenueAggregator) FindArbitrage(pair string) []models.ArbitrageOpportunity {
	quotes := c.freshQuotes(pair)
	if len(quotes) < 2 {
		return nil
	}

	now := c.now()
	var opps []models.ArbitrageOpportunity
	for _, buy := range quotes {
		for _, sell := range quotes {
			if buy.Venue == sell.Venue {
				continue
			}
			if !buy.Ask.IsPositive() || !sell.Bid.GreaterThan(buy.Ask) {
				continue
			}

			grossPct := sell.Bid.Sub(buy.Ask).Div(buy.Ask).Mul(decimalHundred)
			netPct := grossPct.Sub(c.cfg.CostEstimateBps.Div(decimalHundred))
			netBps := netPct.Mul(decimalHundred)
			if netBps.LessThan(c.cfg.MinProfitBps) {
				continue
			}

			size := decimal.Min(buy.Liquidity, sell.Liquidity)
			if c.cfg.MaxRouteSize.IsPositive() {
				size = decimal.Min(size, c.cfg.MaxRouteSize)
			}
			if !size.IsPositive() {
				continue
			}

			opps = append(opps, models.ArbitrageOpportunity{
				ID:             uuid.New().String(),
				Pair:           pair,
				BuyDex:         buy.Venue,
				SellDex:        sell.Venue,
				BuyPrice:       buy.Ask,
				SellPrice:      sell.Bid,
				GrossProfitPct: grossPct,
				NetProfitPct:   netPct,
				SizeAvailable:  size,
				DetectedAt:     now,
			})
		}
	}

	sort.Slice(opps, func(i, j int) bool {
		return opps[i].NetProfitPct.GreaterThan(opps[j].NetProfitPct)
	})
	if len(opps) > 0 {
		c.logger.WithFields(logrus.Fields{
			"pair":  pair,
			"count": len(opps),
		}).Info("Detected arbitrage opportunities")
	}
	return opps
}

// LiquidityView sums fresh liquidity across venues for a pair.
func (c *CrossVenueAggregator) LiquidityView(pair string) models.LiquidityView {
	quotes := c.freshQuotes(pair)

	view := models.LiquidityView{
		Pair:      pair,
		ByVenue:   make(map[string]decimal.Decimal, len(quotes)),
		Timestamp: c.now(),
	}
	for _, q := range quotes {
		view.ByVenue[q.Venue] = q.Liquidity
		view.TotalLiquidity = view.TotalLiquidity.Add(q.Liquidity)
		if view.MostLiquidDex == "" || q.Liquidity.GreaterThan(view.ByVenue[view.MostLiquidDex]) {
			view.MostLiquidDex = q.Venue
		}
	}
	view.VenueCount = len(quotes)
	return view
}

// BestExecutionRoute greedily fills the requested size from the best-priced
// fresh venues, respecting each venue's depth. The unfilled remainder is
// reported on the route, not returned as an error.
func (c *CrossVenueAggregator) BestExecutionRoute(pair string, side models.TradeSide, size decimal.Decimal) models.ExecutionRoute {
	route := models.ExecutionRoute{
		Pair:          pair,
		Side:          side,
		RequestedSize: size,
		Unfilled:      size,
		Timestamp:     c.now(),
	}
	if !size.IsPositive() {
		route.Unfilled = decimal.Zero
		return route
	}

	quotes := c.freshQuotes(pair)
	if side == models.TradeSideBuy {
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].Ask.LessThan(quotes[j].Ask) })
	} else {
		sort.Slice(quotes, func(i, j int) bool { return quotes[i].Bid.GreaterThan(quotes[j].Bid) })
	}

	remaining := size
	notional := decimal.Zero
	for _, q := range quotes {
		if !remaining.IsPositive() {
			break
		}
		price := q.Ask
		if side == models.TradeSideSell {
			price = q.Bid
		}
		if !price.IsPositive() || !q.Liquidity.IsPositive() {
			continue
		}

		fill := decimal.Min(remaining, q.Liquidity)
		route.Legs = append(route.Legs, models.RouteLeg{Venue: q.Venue, Size: fill, Price: price})
		route.FilledSize = route.FilledSize.Add(fill)
		notional = notional.Add(fill.Mul(price))
		remaining = remaining.Sub(fill)
	}

	route.Unfilled = remaining
	if route.FilledSize.IsPositive() {
		route.AvgPrice = notional.Div(route.FilledSize)
	}
	return route
}
