// Package alert fans out new-opportunity signals to the presentation
// layer (the dashboard plays its audible alert off these; the core only
// emits the signal). A TTL cache throttles repeat alerts for the same
// identity, since the at-least-once feed re-creates identities that
// expired and immediately reappeared.
package alert

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/cache"
	"github.com/arbitragex/arbfeed/pkg/types"
)

// Alert is one new-opportunity notification.
type Alert struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"opportunity_id"`
	Provider      string    `json:"provider"`
	Sport         string    `json:"sport"`
	MarketName    string    `json:"market_name"`
	Runner        string    `json:"runner"`
	ArbPercentage float64   `json:"arb_percentage"`
	At            time.Time `json:"at"`
}

// Notifier emits throttled alerts for newly created opportunities.
type Notifier struct {
	throttle cache.Cache
	window   time.Duration
	alerts   chan Alert
	logger   *zap.Logger
}

// Config holds notifier configuration.
type Config struct {
	// ThrottleWindow suppresses repeat alerts for the same identity.
	ThrottleWindow time.Duration
	// BufferSize is the alert channel capacity; delivery is non-blocking
	// and overflow drops the alert rather than stalling the feed engine.
	BufferSize int
	Throttle   cache.Cache
	Logger     *zap.Logger
}

// New creates a new alert notifier.
func New(cfg Config) *Notifier {
	return &Notifier{
		throttle: cfg.Throttle,
		window:   cfg.ThrottleWindow,
		alerts:   make(chan Alert, cfg.BufferSize),
		logger:   cfg.Logger,
	}
}

// Notify emits an alert for a newly created opportunity unless one was
// already emitted for the same identity within the throttle window.
func (n *Notifier) Notify(opp *types.Opportunity, now time.Time) {
	if _, seen := n.throttle.Get(opp.ID); seen {
		n.logger.Debug("alert-throttled", zap.String("opportunity-id", opp.ID))
		ThrottledTotal.Inc()
		return
	}
	n.throttle.Set(opp.ID, struct{}{}, n.window)

	a := Alert{
		ID:            uuid.New().String(),
		OpportunityID: opp.ID,
		Provider:      opp.Provider,
		Sport:         opp.Sport,
		MarketName:    opp.MarketName,
		Runner:        opp.Runner,
		ArbPercentage: opp.ArbPercentage,
		At:            now,
	}

	select {
	case n.alerts <- a:
		EmittedTotal.Inc()
		n.logger.Info("new-opportunity-alert",
			zap.String("opportunity-id", opp.ID),
			zap.String("provider", opp.Provider),
			zap.Float64("arb-percentage", opp.ArbPercentage))
	default:
		DroppedTotal.Inc()
		n.logger.Warn("alert-channel-full", zap.String("opportunity-id", opp.ID))
	}
}

// Alerts returns the channel for receiving alerts.
func (n *Notifier) Alerts() <-chan Alert {
	return n.alerts
}

// Close releases the throttle cache and closes the alert channel.
func (n *Notifier) Close() {
	n.throttle.Close()
	close(n.alerts)
	n.logger.Info("alert-notifier-closed")
}
