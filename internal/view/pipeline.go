// Package view is the presentation pipeline: a pure, composable
// filter-and-sort pass over a store snapshot. It holds no state of its
// own and produces identical output for identical inputs, so callers can
// recompute it on every request or store mutation.
package view

import (
	"sort"

	"github.com/arbitragex/arbfeed/pkg/types"
)

// Selection is the user's filter selection. Set groups with no members
// impose no constraint (users start unfiltered); range bounds are
// inclusive on both ends.
type Selection struct {
	Sports     []string
	Providers  []string
	Markets    []string // derived market categories, not raw names
	Selections []string // derived selection categories, not raw runners
	ArbMin     float64
	ArbMax     float64
	OddsMin    float64
	OddsMax    float64
}

// Apply filters the snapshot through the conjunction of all predicate
// groups and returns it sorted strictly descending by arb percentage.
// The sort is stable: equal percentages keep the snapshot's insertion
// order, which prevents visual jitter across re-renders.
func Apply(snapshot []types.Opportunity, sel Selection) []types.Opportunity {
	out := make([]types.Opportunity, 0, len(snapshot))
	for _, opp := range snapshot {
		if matches(&opp, &sel) {
			out = append(out, opp)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ArbPercentage > out[j].ArbPercentage
	})

	return out
}

func matches(opp *types.Opportunity, sel *Selection) bool {
	if opp.ArbPercentage < sel.ArbMin || opp.ArbPercentage > sel.ArbMax {
		return false
	}
	if !oddsInRange(opp.BackOdds, sel) || !oddsInRange(opp.LayOdds, sel) {
		return false
	}
	if !inSet(opp.Sport, sel.Sports) {
		return false
	}
	if !inSet(opp.Provider, sel.Providers) {
		return false
	}
	// Category groups filter on the derived tags so the option lists
	// stay closed regardless of upstream label variety.
	if !inSet(opp.MarketCategory, sel.Markets) {
		return false
	}
	if !inSet(opp.SelectionCategory, sel.Selections) {
		return false
	}
	return true
}

// oddsInRange checks one odds value against the inclusive range. A zero
// value means the field was absent and passes; absence never rejects a
// record.
func oddsInRange(odds float64, sel *Selection) bool {
	if odds == 0 {
		return true
	}
	return odds >= sel.OddsMin && odds <= sel.OddsMax
}

func inSet(value string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, member := range set {
		if member == value {
			return true
		}
	}
	return false
}
