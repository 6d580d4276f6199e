// Package normalize is the single normalization boundary between the
// heterogeneous raw feed payloads and the canonical Opportunity record.
// All defaulting ("unknown", zero) and the arb-percentage recompute rule
// live here and nowhere else.
package normalize

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/category"
	"github.com/arbitragex/arbfeed/pkg/types"
)

const unknown = "unknown"

// Opportunity converts one raw payload (enveloped or flat legacy shape)
// into a canonical record. It returns types.ErrMissingIdentity when the
// payload carries no identity-bearing fields at all.
func Opportunity(data []byte) (*types.Opportunity, error) {
	var envelope types.RawEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &types.DecodeError{Event: types.EventNewArb, Reason: err}
	}

	raw := envelope.Opportunity
	if raw == nil {
		raw = &types.RawOpportunity{}
		if err := json.Unmarshal(data, raw); err != nil {
			return nil, &types.DecodeError{Event: types.EventNewArb, Reason: err}
		}
	}

	if raw.ID == "" && raw.EventIDProvider == "" {
		return nil, types.ErrMissingIdentity
	}

	opp := &types.Opportunity{
		ID:               identity(raw),
		Provider:         lowerOrUnknown(raw.Provider),
		Sport:            lowerOrUnknown(raw.Sport),
		MarketName:       orUnknown(raw.MarketName),
		Runner:           orUnknown(raw.Runner),
		ArbPercentage:    arbPercentage(raw),
		BackOdds:         raw.BackOdds.Value(),
		LayOdds:          raw.LayOdds.Value(),
		BetfairLaySize:   raw.BetfairLaySize.Value(),
		Teams:            raw.Teams,
		Tournament:       raw.Tournament,
		Timestamp:        raw.Timestamp,
		BetfairURL:       raw.BetfairURL,
		BetfairMarketID:  raw.BetfairMarketID,
		EventIDBetfair:   raw.EventIDBetfair,
		EventIDProvider:  raw.EventIDProvider,
		ProviderMarketID: raw.ProviderMarketID,
		ProviderURL:      raw.ProviderURL,
		HandicapName:     raw.HandicapName,
	}

	opp.MarketCategory = category.Market(opp.MarketName)
	opp.SelectionCategory = category.Selection(opp.Runner)

	return opp, nil
}

// Batch converts a new:arb payload that may be a single object or an
// array of objects. Malformed members are logged and skipped; they never
// fail the rest of the batch.
func Batch(data []byte, logger *zap.Logger) []*types.Opportunity {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	var members []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &members); err != nil {
			logger.Warn("malformed-batch-payload", zap.Error(err))
			MalformedEventsTotal.Inc()
			return nil
		}
	} else {
		members = []json.RawMessage{trimmed}
	}

	opps := make([]*types.Opportunity, 0, len(members))
	for i, member := range members {
		opp, err := Opportunity(member)
		if err != nil {
			logger.Warn("malformed-event-skipped",
				zap.Int("batch-index", i),
				zap.Error(err))
			MalformedEventsTotal.Inc()
			continue
		}
		opps = append(opps, opp)
	}

	return opps
}

// identity builds the stable de-duplication key. Plain concatenation so
// operators can eyeball-debug it in logs. An upstream-supplied id wins;
// the legacy shape derives one from its identity-bearing fields.
func identity(raw *types.RawOpportunity) string {
	if raw.ID != "" {
		return raw.ID
	}
	return fmt.Sprintf("%s-%s-%s-%s",
		raw.EventIDProvider,
		strings.ToLower(raw.Provider),
		raw.MarketName,
		raw.Runner,
	)
}

// arbPercentage applies the recompute rule: whenever both odds are on
// the wire the raw percentage is stale and must be rederived as
// (back-lay)/lay*100; a non-positive lay is a division artifact and
// clamps to 0. Without both odds, the raw value is trusted.
func arbPercentage(raw *types.RawOpportunity) float64 {
	if raw.BackOdds != nil && raw.LayOdds != nil {
		lay := raw.LayOdds.Value()
		if lay <= 0 {
			return 0
		}
		return (raw.BackOdds.Value() - lay) / lay * 100
	}
	return raw.ArbPercentage.Value()
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func lowerOrUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return strings.ToLower(s)
}
