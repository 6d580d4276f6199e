// Package storage records first sightings of opportunities to an audit
// trail. The reconciliation core itself is transient and in-memory; the
// sink is an optional side channel and never participates in expiry or
// filtering.
package storage

import (
	"context"

	"github.com/arbitragex/arbfeed/pkg/types"
)

// Sink is the interface for recording opportunity sightings.
type Sink interface {
	// RecordSighting stores the first sighting of an opportunity.
	RecordSighting(ctx context.Context, opp *types.Opportunity) error

	// Close closes the sink.
	Close() error
}
