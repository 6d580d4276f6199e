// Package feed runs the reconciliation engine: a single goroutine that
// serializes event arrivals and the two sweep cadences onto one timeline,
// so store mutations never interleave. The engine is the only writer the
// store ever sees.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/alert"
	"github.com/arbitragex/arbfeed/internal/normalize"
	"github.com/arbitragex/arbfeed/internal/storage"
	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/pkg/types"
)

// Engine consumes lifecycle signals from the connection adapter and
// reconciles them into the store.
type Engine struct {
	store     *store.Store
	notifier  *alert.Notifier
	sink      storage.Sink
	signals   <-chan types.Signal
	config    Config
	logger    *zap.Logger
	connected atomic.Bool
	ctx       context.Context
	wg        sync.WaitGroup
}

// Config holds engine configuration.
type Config struct {
	// ExpiringSweepInterval is the cadence of the stale-flag sweep. Fine
	// grained so the visual warning is prompt; the sweep must stay cheap
	// enough to run every tick with the store at capacity.
	ExpiringSweepInterval time.Duration
	// EvictionSweepInterval is the coarser cadence of the eviction sweep.
	EvictionSweepInterval time.Duration
	// OnAuthRequired is invoked when the feed rejects our credential.
	// The host re-authenticates; the engine itself never retries auth.
	OnAuthRequired func()
	Logger         *zap.Logger
}

// New creates a new feed engine. The sink may be nil when history
// recording is disabled.
func New(cfg Config, st *store.Store, notifier *alert.Notifier, sink storage.Sink, signals <-chan types.Signal) *Engine {
	return &Engine{
		store:    st,
		notifier: notifier,
		sink:     sink,
		signals:  signals,
		config:   cfg,
		logger:   cfg.Logger,
	}
}

// Start starts the engine loop.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx = ctx
	e.logger.Info("feed-engine-starting",
		zap.Duration("expiring-sweep-interval", e.config.ExpiringSweepInterval),
		zap.Duration("eviction-sweep-interval", e.config.EvictionSweepInterval))

	e.wg.Add(1)
	go e.loop()

	return nil
}

// loop is the single mutation timeline. Each case runs to completion
// before the next is selected; there are no other store writers.
func (e *Engine) loop() {
	defer e.wg.Done()

	expiringTicker := time.NewTicker(e.config.ExpiringSweepInterval)
	defer expiringTicker.Stop()
	evictionTicker := time.NewTicker(e.config.EvictionSweepInterval)
	defer evictionTicker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("feed-engine-stopping")
			return
		case sig, ok := <-e.signals:
			if !ok {
				e.logger.Info("signal-channel-closed")
				return
			}
			e.handleSignal(sig)
		case now := <-expiringTicker.C:
			e.store.SweepExpiring(now)
		case now := <-evictionTicker.C:
			e.store.SweepEviction(now)
		}
	}
}

// handleSignal dispatches one lifecycle or event signal.
func (e *Engine) handleSignal(sig types.Signal) {
	switch sig.Type {
	case types.SignalConnected:
		e.connected.Store(true)
		e.logger.Info("feed-connected")
	case types.SignalDisconnected:
		// Opportunities are not touched on disconnect: they simply stop
		// being refreshed and age out through the normal expiry path.
		e.connected.Store(false)
		e.logger.Warn("feed-disconnected")
	case types.SignalAuthFailed:
		e.connected.Store(false)
		e.logger.Error("feed-authentication-failed")
		if e.config.OnAuthRequired != nil {
			e.config.OnAuthRequired()
		}
	case types.SignalError:
		e.logger.Warn("feed-error", zap.Error(sig.Err))
	case types.SignalEvent:
		e.handleEvent(sig.Payload)
	}
}

// handleEvent normalizes one event payload (single or batch) and upserts
// it, alerting and recording first sightings.
func (e *Engine) handleEvent(payload []byte) {
	start := time.Now()
	defer func() {
		EventProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	opps := normalize.Batch(payload, e.logger)
	if len(opps) == 0 {
		return
	}

	now := time.Now()
	created := e.store.Upsert(opps, now)
	EventsTotal.Add(float64(len(opps)))

	if len(created) == 0 {
		return
	}

	createdSet := make(map[string]struct{}, len(created))
	for _, id := range created {
		createdSet[id] = struct{}{}
	}

	for _, opp := range opps {
		if _, isNew := createdSet[opp.ID]; !isNew {
			continue
		}
		if e.notifier != nil {
			e.notifier.Notify(opp, now)
		}
		if e.sink != nil {
			err := e.sink.RecordSighting(e.ctx, opp)
			if err != nil {
				e.logger.Error("record-sighting-failed",
					zap.String("opportunity-id", opp.ID),
					zap.Error(err))
			}
		}
	}
}

// Connected reports whether the feed currently has a live connection.
func (e *Engine) Connected() bool {
	return e.connected.Load()
}

// Close waits for the engine loop to drain.
func (e *Engine) Close() error {
	e.logger.Info("closing-feed-engine")
	e.wg.Wait()
	e.logger.Info("feed-engine-closed")
	return nil
}
