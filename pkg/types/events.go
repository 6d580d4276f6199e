package types

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Feed frame event names.
const (
	EventNewArb     = "new:arb"
	EventAuthFailed = "authentication:failed"
)

// FeedFrame is the outer shape of every frame the feed pushes.
// Data carries the raw payload for event-specific decoding.
type FeedFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// RawOpportunity is the wire shape of a single opportunity payload.
// The feed emits two variants: a flat legacy shape and an enveloped
// {"opportunity": {...}} shape (see RawEnvelope). Numeric fields arrive
// as JSON numbers or quoted strings depending on the upstream producer,
// hence FlexFloat.
type RawOpportunity struct {
	ID               string     `json:"id"`
	Provider         string     `json:"provider"`
	Sport            string     `json:"sport"`
	MarketName       string     `json:"market_name"`
	Runner           string     `json:"runner"`
	ArbPercentage    *FlexFloat `json:"arb_percentage"`
	BackOdds         *FlexFloat `json:"back_odds"`
	LayOdds          *FlexFloat `json:"lay_odds"`
	BetfairLaySize   *FlexFloat `json:"betfair_lay_size"`
	Teams            string     `json:"teams"`
	Tournament       string     `json:"tournament"`
	Timestamp        string     `json:"timestamp"`
	BetfairURL       string     `json:"betfair_url"`
	BetfairMarketID  string     `json:"betfair_market_id"`
	EventIDBetfair   string     `json:"event_id_betfair"`
	EventIDProvider  string     `json:"event_id_provider"`
	ProviderMarketID string     `json:"provider_market_id"`
	ProviderURL      string     `json:"provider_url"`
	HandicapName     string     `json:"handicap_name"`
}

// RawEnvelope is the enveloped payload variant.
type RawEnvelope struct {
	Opportunity *RawOpportunity `json:"opportunity"`
}

// FlexFloat decodes a float64 from a JSON number, a quoted number, or
// null. Absent and null both leave the pointer nil so callers can tell
// "missing" apart from an explicit zero.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", s, err)
	}
	*f = FlexFloat(v)
	return nil
}

// Value returns the underlying float64, or 0 when the field was absent.
func (f *FlexFloat) Value() float64 {
	if f == nil {
		return 0
	}
	return float64(*f)
}
