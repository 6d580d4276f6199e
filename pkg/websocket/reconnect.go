package websocket

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// ErrReconnectExhausted is returned when the attempt budget runs out
// before the feed connection is re-established. The manager surfaces it
// to the engine as an error signal; the session does not come back on
// its own after this.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// ReconnectConfig holds the configuration for exponential backoff reconnection.
type ReconnectConfig struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	JitterPercent     float64 // 0.2 = 20%
	// MaxAttempts bounds one reconnect cycle. Zero means retry until the
	// context is cancelled, which suits the single always-on feed stream.
	MaxAttempts int
}

// ReconnectManager retries the feed connection with exponential backoff
// and jitter. The delay is derived from the attempt number, so a cycle
// carries no state between calls and needs no locking.
type ReconnectManager struct {
	config ReconnectConfig
	logger *zap.Logger
}

// NewReconnectManager creates a new reconnection manager.
func NewReconnectManager(cfg ReconnectConfig, logger *zap.Logger) *ReconnectManager {
	return &ReconnectManager{
		config: cfg,
		logger: logger,
	}
}

// Reconnect retries the provided connect function until it succeeds, the
// context is cancelled, or the attempt budget runs out.
func (rm *ReconnectManager) Reconnect(ctx context.Context, connectFunc func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		if rm.config.MaxAttempts > 0 && attempt > rm.config.MaxAttempts {
			return fmt.Errorf("%w after %d attempts", ErrReconnectExhausted, rm.config.MaxAttempts)
		}

		delay := rm.delayFor(attempt)

		rm.logger.Info("attempting-reconnection",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay))
		ReconnectAttemptsTotal.Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		err := connectFunc(ctx)
		if err == nil {
			rm.logger.Info("reconnection-successful", zap.Int("attempt", attempt))
			return nil
		}

		rm.logger.Warn("reconnection-failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		ReconnectFailuresTotal.Inc()
	}
}

// delayFor computes the backoff for one attempt: the initial delay
// scaled by the multiplier per prior attempt, capped at the maximum,
// with proportional jitter so reconnecting clients spread out after a
// feed-side outage.
func (rm *ReconnectManager) delayFor(attempt int) time.Duration {
	delay := float64(rm.config.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= rm.config.BackoffMultiplier
		if delay >= float64(rm.config.MaxDelay) {
			delay = float64(rm.config.MaxDelay)
			break
		}
	}

	jitter := rand.Float64() * rm.config.JitterPercent
	return time.Duration(delay * (1.0 + jitter))
}
