package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/venues"
)

// defaultPollInterval paces venue quote fetches when no interval is
// configured.
const defaultPollInterval = 10 * time.Second

// QuotePoller periodically pulls quotes from every registered venue and
// feeds them into the cross-venue aggregator. Push-based feeds bypass the
// poller through the quote ingestion endpoint; both paths land in the same
// per-(venue, pair) slot.
type QuotePoller struct {
	registry   *venues.Registry
	aggregator *CrossVenueAggregator
	pairs      []string
	interval   time.Duration
	logger     *logrus.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewQuotePoller creates a poller over the registry's venues. A non-positive
// interval falls back to the default.
func NewQuotePoller(registry *venues.Registry, aggregator *CrossVenueAggregator, pairs []string, interval time.Duration, logger *logrus.Logger) *QuotePoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &QuotePoller{
		registry:   registry,
		aggregator: aggregator,
		pairs:      pairs,
		interval:   interval,
		logger:     logger,
	}
}

// Start launches the poll loop. Calling Start twice restarts the loop.
func (p *QuotePoller) Start() {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.PollOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.PollOnce(ctx)
			}
		}
	}()
	p.logger.WithField("interval", p.interval.String()).Info("Quote poller started")
}

// Stop cancels the poll loop and waits for it to exit.
func (p *QuotePoller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.cancel = nil
}

// PollOnce fetches every (venue, pair) quote once. Venues that cannot serve
// a pair are skipped; their stale slots age out of the aggregator's reads.
func (p *QuotePoller) PollOnce(ctx context.Context) {
	for _, venue := range p.registry.All() {
		for _, pair := range p.pairs {
			quote, err := venue.FetchQuote(ctx, pair)
			if err != nil {
				p.logger.WithFields(logrus.Fields{
					"venue": venue.Name(),
					"pair":  pair,
				}).WithError(err).Debug("Quote fetch failed")
				continue
			}
			p.aggregator.UpdateQuote(quote)
		}
	}
}
