package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/types"
)

// ConsoleSink implements Sink by logging sightings.
type ConsoleSink struct {
	logger *zap.Logger
}

// NewConsoleSink creates a new console sink.
func NewConsoleSink(logger *zap.Logger) *ConsoleSink {
	logger.Info("console-sink-initialized")
	return &ConsoleSink{logger: logger}
}

// RecordSighting logs the sighting.
func (c *ConsoleSink) RecordSighting(ctx context.Context, opp *types.Opportunity) error {
	c.logger.Info("opportunity-sighted",
		zap.String("opportunity-id", opp.ID),
		zap.String("provider", opp.Provider),
		zap.String("sport", opp.Sport),
		zap.String("market", opp.MarketName),
		zap.String("runner", opp.Runner),
		zap.Float64("arb-percentage", opp.ArbPercentage),
		zap.Float64("back-odds", opp.BackOdds),
		zap.Float64("lay-odds", opp.LayOdds))
	return nil
}

// Close is a no-op for the console sink.
func (c *ConsoleSink) Close() error {
	c.logger.Info("closing-console-sink")
	return nil
}
