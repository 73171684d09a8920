package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Rippin918/hummingbot-daily-auto/internal/models"
)

// defaultEventBuffer bounds each worker's inbox. Events beyond the buffer are
// dropped rather than blocking the dispatcher.
const defaultEventBuffer = 1024

// SignalSink receives every freshly composed signal. Sinks must not block
// for long; they run on the worker goroutine.
type SignalSink interface {
	PublishSignal(ctx context.Context, signal models.UnifiedMMSignal) error
}

// analyzerKey identifies one (pair, venue) analyzer instance.
type analyzerKey struct {
	Pair  string
	Venue string
}

// marketEvent is the ordered union consumed by a worker. Exactly one field
// is set.
type marketEvent struct {
	swap      *models.SwapEvent
	candle    *models.OHLCCandle
	flow      *models.OrderflowObservation
	inventory *models.InventoryUpdate
}

// analyzerWorker pairs one analyzer with its event channel and cached output.
type analyzerWorker struct {
	key      analyzerKey
	analyzer *MarketMakingAnalyzer
	events   chan marketEvent

	mu         sync.RWMutex
	lastSignal models.UnifiedMMSignal
	dropped    int64
}

// Orchestrator owns one analyzer per (pair, venue), each driven by a single
// worker goroutine consuming an ordered event channel. Keys are fully
// independent: one pair's burst never delays another's.
type Orchestrator struct {
	cfg    AnalyzerConfig
	logger *logrus.Logger
	sinks  []SignalSink

	workers map[analyzerKey]*analyzerWorker
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates an orchestrator; workers are added via
// RegisterPair before or after events start flowing.
func NewOrchestrator(cfg AnalyzerConfig, logger *logrus.Logger, sinks ...SignalSink) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		sinks:   sinks,
		workers: make(map[analyzerKey]*analyzerWorker),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterPair creates the analyzer and worker goroutine for one
// (pair, venue). Registering an existing key is a no-op.
func (o *Orchestrator) RegisterPair(pair, venue string) error {
	key := analyzerKey{Pair: pair, Venue: venue}

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.workers[key]; ok {
		return nil
	}

	analyzer, err := NewMarketMakingAnalyzer(pair, venue, o.cfg, o.logger)
	if err != nil {
		return fmt.Errorf("analyzer for %s@%s: %w", pair, venue, err)
	}

	worker := &analyzerWorker{
		key:      key,
		analyzer: analyzer,
		events:   make(chan marketEvent, defaultEventBuffer),
	}
	o.workers[key] = worker

	o.wg.Add(1)
	go o.runWorker(worker)

	o.logger.WithFields(logrus.Fields{"pair": pair, "venue": venue}).Info("Registered analyzer worker")
	return nil
}

// Stop cancels all workers and waits for them to drain.
func (o *Orchestrator) Stop() {
	o.cancel()
	o.wg.Wait()
	o.logger.Info("Orchestrator stopped")
}

// DispatchSwap routes a swap to its worker. Events for unregistered keys are
// dropped.
func (o *Orchestrator) DispatchSwap(ev models.SwapEvent) {
	o.dispatch(analyzerKey{Pair: ev.Pair, Venue: ev.Venue}, marketEvent{swap: &ev})
}

// DispatchCandle routes a candle to the worker for (pair, venue).
func (o *Orchestrator) DispatchCandle(pair, venue string, c models.OHLCCandle) {
	o.dispatch(analyzerKey{Pair: pair, Venue: venue}, marketEvent{candle: &c})
}

// DispatchOrderflow routes a liquidity snapshot to the worker for (pair, venue).
func (o *Orchestrator) DispatchOrderflow(pair, venue string, obs models.OrderflowObservation) {
	o.dispatch(analyzerKey{Pair: pair, Venue: venue}, marketEvent{flow: &obs})
}

// DispatchInventory routes an inventory update to the worker for (pair, venue).
func (o *Orchestrator) DispatchInventory(pair, venue string, upd models.InventoryUpdate) {
	o.dispatch(analyzerKey{Pair: pair, Venue: venue}, marketEvent{inventory: &upd})
}

func (o *Orchestrator) dispatch(key analyzerKey, ev marketEvent) {
	o.mu.RLock()
	worker, ok := o.workers[key]
	o.mu.RUnlock()
	if !ok {
		o.logger.WithFields(logrus.Fields{"pair": key.Pair, "venue": key.Venue}).
			Debug("Dropping event for unregistered pair")
		return
	}

	select {
	case worker.events <- ev:
	default:
		worker.mu.Lock()
		worker.dropped++
		dropped := worker.dropped
		worker.mu.Unlock()
		o.logger.WithFields(logrus.Fields{
			"pair":    key.Pair,
			"venue":   key.Venue,
			"dropped": dropped,
		}).Warn("Worker inbox full, dropping event")
	}
}

// Signal returns the most recently composed signal for (pair, venue).
func (o *Orchestrator) Signal(pair, venue string) (models.UnifiedMMSignal, bool) {
	o.mu.RLock()
	worker, ok := o.workers[analyzerKey{Pair: pair, Venue: venue}]
	o.mu.RUnlock()
	if !ok {
		return models.UnifiedMMSignal{}, false
	}

	worker.mu.RLock()
	defer worker.mu.RUnlock()
	if worker.lastSignal.Timestamp.IsZero() {
		return models.UnifiedMMSignal{}, false
	}
	return worker.lastSignal, true
}

// Signals lists the latest composed signal for every registered key.
func (o *Orchestrator) Signals() []models.UnifiedMMSignal {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]models.UnifiedMMSignal, 0, len(o.workers))
	for _, w := range o.workers {
		w.mu.RLock()
		if !w.lastSignal.Timestamp.IsZero() {
			out = append(out, w.lastSignal)
		}
		w.mu.RUnlock()
	}
	return out
}

// runWorker is the single writer for one analyzer. It applies events in
// arrival order, recomposes the signal after each one and fans it out.
func (o *Orchestrator) runWorker(w *analyzerWorker) {
	defer o.wg.Done()

	for {
		select {
		case <-o.ctx.Done():
			return
		case ev := <-w.events:
			o.applyEvent(w, ev)

			signal := w.analyzer.BuildSignal(time.Now())
			w.mu.Lock()
			w.lastSignal = signal
			w.mu.Unlock()

			for _, sink := range o.sinks {
				if err := sink.PublishSignal(o.ctx, signal); err != nil {
					o.logger.WithFields(logrus.Fields{
						"pair":  w.key.Pair,
						"venue": w.key.Venue,
					}).WithError(err).Warn("Signal sink publish failed")
				}
			}
		}
	}
}

func (o *Orchestrator) applyEvent(w *analyzerWorker, ev marketEvent) {
	switch {
	case ev.swap != nil:
		w.analyzer.OnSwap(*ev.swap)
	case ev.candle != nil:
		w.analyzer.OnCandle(*ev.candle)
	case ev.flow != nil:
		w.analyzer.OnOrderflow(*ev.flow)
	case ev.inventory != nil:
		if err := w.analyzer.OnInventory(*ev.inventory); err != nil {
			o.logger.WithFields(logrus.Fields{
				"pair":  w.key.Pair,
				"venue": w.key.Venue,
			}).WithError(err).Error("Inventory update rejected")
		}
	}
}
