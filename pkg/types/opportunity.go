package types

import (
	"fmt"
	"time"
)

// Opportunity is one normalized arbitrage signal for a specific
// (event, provider, market, runner) combination. The ID is the sole
// de-duplication key across the live feed.
type Opportunity struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	Sport         string  `json:"sport"`
	MarketName    string  `json:"market_name"`
	Runner        string  `json:"runner"`
	ArbPercentage float64 `json:"arb_percentage"`

	// Derived classification tags, recomputed on every upsert.
	MarketCategory    string `json:"market_category"`
	SelectionCategory string `json:"selection_category"`

	// LastSeen is the arrival time of the most recent update for this
	// identity. Monotonically non-decreasing.
	LastSeen time.Time `json:"last_seen"`

	// IsExpiring is set once the record enters the stale-but-not-evicted
	// window. Presentation only, never affects filtering or eviction.
	IsExpiring bool `json:"is_expiring"`

	// Optional descriptive fields, passed through unmodified.
	Teams            string  `json:"teams,omitempty"`
	Tournament       string  `json:"tournament,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
	BackOdds         float64 `json:"back_odds,omitempty"`
	LayOdds          float64 `json:"lay_odds,omitempty"`
	BetfairLaySize   float64 `json:"betfair_lay_size,omitempty"`
	BetfairURL       string  `json:"betfair_url,omitempty"`
	BetfairMarketID  string  `json:"betfair_market_id,omitempty"`
	EventIDBetfair   string  `json:"event_id_betfair,omitempty"`
	EventIDProvider  string  `json:"event_id_provider,omitempty"`
	ProviderMarketID string  `json:"provider_market_id,omitempty"`
	ProviderURL      string  `json:"provider_url,omitempty"`
	HandicapName     string  `json:"handicap_name,omitempty"`
}

// ExchangeURL returns the reference-exchange deep link for the lay side.
// Soccer markets link to the Orbit mirror, everything else to Betfair.
func (o *Opportunity) ExchangeURL() string {
	if o.BetfairMarketID != "" {
		if o.Sport == "soccer" || o.Sport == "football" {
			return fmt.Sprintf("https://orbitxch.com/customer/sport/1/market/%s", o.BetfairMarketID)
		}
		return fmt.Sprintf("https://www.betfair.com/exchange/plus/%s/market/%s", o.Sport, o.BetfairMarketID)
	}
	if o.EventIDBetfair != "" {
		return fmt.Sprintf("https://www.betfair.com/exchange/plus/%s/event/%s", o.Sport, o.EventIDBetfair)
	}
	return "https://www.betfair.com/"
}

// String returns a human-readable representation of the opportunity.
func (o *Opportunity) String() string {
	return fmt.Sprintf(
		"Opportunity[%s] %s %s/%s arb=%.2f%% back=%.2f lay=%.2f",
		o.ID,
		o.Provider,
		o.MarketName,
		o.Runner,
		o.ArbPercentage,
		o.BackOdds,
		o.LayOdds,
	)
}
