package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Rippin918/hummingbot-daily-auto/internal/cache"
	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
	"github.com/Rippin918/hummingbot-daily-auto/internal/services"
	"github.com/Rippin918/hummingbot-daily-auto/internal/telemetry"
)

// ArbitrageNotifier pushes detected opportunity batches to an alert channel.
type ArbitrageNotifier interface {
	NotifyArbitrage(ctx context.Context, opps []models.ArbitrageOpportunity) error
}

// AnalyticsHandler serves the composed signals and cross-venue views.
type AnalyticsHandler struct {
	orchestrator *services.Orchestrator
	aggregator   *services.CrossVenueAggregator
	signals      *cache.SignalCache
	notifier     ArbitrageNotifier
}

// NewAnalyticsHandler wires the read-side endpoints. The signal cache and
// notifier are optional; without them signal reads come from the
// orchestrator only and arbitrage hits stay in the response.
func NewAnalyticsHandler(orchestrator *services.Orchestrator, aggregator *services.CrossVenueAggregator, signals *cache.SignalCache, notifier ArbitrageNotifier) *AnalyticsHandler {
	return &AnalyticsHandler{
		orchestrator: orchestrator,
		aggregator:   aggregator,
		signals:      signals,
		notifier:     notifier,
	}
}

// GetSignals returns the latest composed signal for every registered key.
func (h *AnalyticsHandler) GetSignals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data":      h.orchestrator.Signals(),
		"timestamp": time.Now(),
	})
}

// GetSignal returns the latest signal for one (pair, venue).
func (h *AnalyticsHandler) GetSignal(c *gin.Context) {
	pair := c.Param("pair")
	venue := c.Param("venue")

	sig, ok := h.orchestrator.Signal(pair, venue)
	if !ok && h.signals != nil {
		sig, ok = h.signals.LatestSignal(c.Request.Context(), pair, venue)
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no signal for " + pair + "@" + venue})
		return
	}
	c.JSON(http.StatusOK, sig)
}

// GetArbitrage scans the fresh quotes for executable dislocations.
func (h *AnalyticsHandler) GetArbitrage(c *gin.Context) {
	ctx, span := telemetry.Tracer().Start(c.Request.Context(), "arbitrage-scan")
	defer span.End()

	pair := c.Param("pair")
	opps := h.aggregator.FindArbitrage(pair)
	if len(opps) > 0 {
		// Best effort: API reads double as bus refreshes and alert triggers.
		if h.signals != nil {
			_ = h.signals.PublishArbitrage(ctx, pair, opps)
		}
		if h.notifier != nil {
			_ = h.notifier.NotifyArbitrage(ctx, opps)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      opps,
		"count":     len(opps),
		"timestamp": time.Now(),
	})
}

// GetSpreadMatrix returns the cross-venue best bid/offer view.
func (h *AnalyticsHandler) GetSpreadMatrix(c *gin.Context) {
	pair := c.Param("pair")
	matrix, ok := h.aggregator.SpreadMatrix(pair)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no fresh quotes for " + pair})
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// GetLiquidity returns the unified liquidity view.
func (h *AnalyticsHandler) GetLiquidity(c *gin.Context) {
	c.JSON(http.StatusOK, h.aggregator.LiquidityView(c.Param("pair")))
}

// GetRoute plans a greedy best-price execution across venues.
func (h *AnalyticsHandler) GetRoute(c *gin.Context) {
	pair := c.Param("pair")

	side := models.TradeSide(c.DefaultQuery("side", string(models.TradeSideBuy)))
	if side != models.TradeSideBuy && side != models.TradeSideSell {
		c.JSON(http.StatusBadRequest, gin.H{"error": "side must be buy or sell"})
		return
	}

	size, err := decimal.NewFromString(c.Query("size"))
	if err != nil || !size.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a positive number"})
		return
	}

	c.JSON(http.StatusOK, h.aggregator.BestExecutionRoute(pair, side, size))
}

// PostSwap ingests one swap event, for push-based feeds and simulation.
func (h *AnalyticsHandler) PostSwap(c *gin.Context) {
	var ev models.SwapEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if ev.Pair == "" || ev.Venue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pair and venue are required"})
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	h.orchestrator.DispatchSwap(ev)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// PostQuote ingests one venue quote into the cross-venue aggregator.
func (h *AnalyticsHandler) PostQuote(c *gin.Context) {
	var q models.DEXQuote
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.Pair == "" || q.Venue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pair and venue are required"})
		return
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}

	h.aggregator.UpdateQuote(q)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
