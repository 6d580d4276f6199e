// Package store holds the authoritative in-memory collection of live
// arbitrage opportunities, keyed by derived identity. It reconciles the
// at-least-once feed into at most one record per identity, flags stale
// records, evicts expired ones, and bounds total size.
package store

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/category"
	"github.com/arbitragex/arbfeed/pkg/types"
)

// Store is the reconciling opportunity collection. All mutations arrive
// from a single goroutine (the feed engine); the lock exists so HTTP
// readers can snapshot concurrently.
type Store struct {
	mu      sync.RWMutex
	records map[string]*entry
	nextSeq uint64
	cfg     Config
	logger  *zap.Logger
}

// entry pairs a record with its insertion sequence. The sequence is
// assigned once on first sight and survives updates, so snapshots can
// reproduce insertion order for stable tie-breaking downstream.
type entry struct {
	opp types.Opportunity
	seq uint64
}

// Config holds store configuration.
type Config struct {
	// ExpiringWindow is the age at which a record is flagged IsExpiring.
	ExpiringWindow time.Duration
	// ExpiryThreshold is the age at which a record is evicted.
	ExpiryThreshold time.Duration
	// MaxOpportunities bounds the live record count; the oldest LastSeen
	// records beyond the bound are evicted after each upsert batch.
	MaxOpportunities int
	Logger           *zap.Logger
}

// New creates a new opportunity store.
func New(cfg Config) *Store {
	return &Store{
		records: make(map[string]*entry),
		cfg:     cfg,
		logger:  cfg.Logger,
	}
}

// Upsert reconciles a batch of normalized records into the store and
// returns the ids that were newly created (callers use these to trigger
// new-opportunity alerts). Existing records get a full overwrite of
// their non-identity fields: the latest received event wins, there is no
// field-level merge and no event sequencing. LastSeen is always set to
// now, so it never decreases. Derived categories are recomputed on every
// upsert, never carried stale.
func (s *Store) Upsert(opps []*types.Opportunity, now time.Time) []string {
	if len(opps) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created []string
	for _, opp := range opps {
		record := *opp
		record.LastSeen = now
		record.IsExpiring = false
		record.MarketCategory = category.Market(record.MarketName)
		record.SelectionCategory = category.Selection(record.Runner)

		existing, ok := s.records[record.ID]
		if ok {
			// Duplicate delivery is the normal case: refresh in place,
			// keep the original insertion sequence.
			existing.opp = record
			UpsertsTotal.WithLabelValues("updated").Inc()
			continue
		}

		s.records[record.ID] = &entry{opp: record, seq: s.nextSeq}
		s.nextSeq++
		created = append(created, record.ID)
		UpsertsTotal.WithLabelValues("created").Inc()
	}

	s.enforceCapacityLocked()
	OpportunitiesLive.Set(float64(len(s.records)))

	return created
}

// SweepExpiring flags every record older than the expiring window.
// Idempotent: an already-flagged record stays flagged. Runs on a fine
// cadence, so it must stay a cheap single pass even at capacity.
func (s *Store) SweepExpiring(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.records {
		if e.opp.IsExpiring {
			continue
		}
		if now.Sub(e.opp.LastSeen) >= s.cfg.ExpiringWindow {
			e.opp.IsExpiring = true
		}
	}
}

// SweepEviction removes every record whose age reached the expiry
// threshold and returns the evicted ids. Runs on a coarser cadence than
// SweepExpiring since eviction is not time-critical to the millisecond.
func (s *Store) SweepEviction(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for id, e := range s.records {
		if now.Sub(e.opp.LastSeen) >= s.cfg.ExpiryThreshold {
			delete(s.records, id)
			evicted = append(evicted, id)
			EvictionsTotal.WithLabelValues("expired").Inc()
		}
	}

	if len(evicted) > 0 {
		OpportunitiesLive.Set(float64(len(s.records)))
		s.logger.Debug("expired-opportunities-evicted", zap.Int("count", len(evicted)))
	}

	return evicted
}

// enforceCapacityLocked evicts the oldest-LastSeen records beyond the
// configured bound. Caller must hold the write lock.
func (s *Store) enforceCapacityLocked() {
	excess := len(s.records) - s.cfg.MaxOpportunities
	if s.cfg.MaxOpportunities <= 0 || excess <= 0 {
		return
	}

	entries := make([]*entry, 0, len(s.records))
	for _, e := range s.records {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].opp.LastSeen.Equal(entries[j].opp.LastSeen) {
			return entries[i].seq < entries[j].seq
		}
		return entries[i].opp.LastSeen.Before(entries[j].opp.LastSeen)
	})

	for _, e := range entries[:excess] {
		delete(s.records, e.opp.ID)
		EvictionsTotal.WithLabelValues("capacity").Inc()
	}

	s.logger.Warn("capacity-bound-evicted-oldest",
		zap.Int("evicted", excess),
		zap.Int("max", s.cfg.MaxOpportunities))
}

// Snapshot returns a copy of every live record in insertion order. The
// insertion order is what makes the downstream stable sort deterministic
// for equal arb percentages.
func (s *Store) Snapshot() []types.Opportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*entry, 0, len(s.records))
	for _, e := range s.records {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	opps := make([]types.Opportunity, len(entries))
	for i, e := range entries {
		opps[i] = e.opp
	}

	return opps
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (types.Opportunity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.records[id]
	if !ok {
		return types.Opportunity{}, false
	}
	return e.opp, true
}

// Len returns the live record count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
