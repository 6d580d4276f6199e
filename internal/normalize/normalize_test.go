package normalize

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/types"
)

func TestOpportunityLegacyShape(t *testing.T) {
	data := []byte(`{
		"event_id_provider": "50922367",
		"provider": "Golbet724",
		"sport": "Soccer",
		"market_name": "Match Odds",
		"runner": "The Draw",
		"arb_percentage": 53.39,
		"teams": "St Mirren vs Hearts",
		"tournament": "Scottish League Cup",
		"betfair_market_id": "1.246530510",
		"event_id_betfair": "34608673"
	}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	if opp.ID != "50922367-golbet724-Match Odds-The Draw" {
		t.Errorf("unexpected identity: %q", opp.ID)
	}

	if opp.Provider != "golbet724" {
		t.Errorf("expected provider lower-cased, got %q", opp.Provider)
	}

	if opp.Sport != "soccer" {
		t.Errorf("expected sport lower-cased, got %q", opp.Sport)
	}

	// No odds on the wire: raw percentage is trusted.
	if opp.ArbPercentage != 53.39 {
		t.Errorf("expected raw arb trusted, got %.2f", opp.ArbPercentage)
	}

	if opp.MarketCategory != "match-odds" {
		t.Errorf("expected match-odds category, got %q", opp.MarketCategory)
	}

	if opp.SelectionCategory != "other" {
		t.Errorf("expected other selection, got %q", opp.SelectionCategory)
	}
}

func TestOpportunityEnvelopedShape(t *testing.T) {
	data := []byte(`{"opportunity": {
		"id": "opp-1",
		"provider": "PAPA",
		"sport": "basketball",
		"market_name": "Totals",
		"runner": "Over 210.5"
	}}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	if opp.ID != "opp-1" {
		t.Errorf("expected upstream id kept, got %q", opp.ID)
	}

	if opp.Provider != "papa" {
		t.Errorf("expected provider lower-cased, got %q", opp.Provider)
	}

	if opp.MarketCategory != "over-under" || opp.SelectionCategory != "over" {
		t.Errorf("unexpected categories: %q / %q", opp.MarketCategory, opp.SelectionCategory)
	}
}

func TestIdentityStability(t *testing.T) {
	// Optional descriptive fields must not change the identity.
	a := []byte(`{"event_id_provider":"e1","provider":"papa","market_name":"Match Odds","runner":"Home","teams":"A vs B"}`)
	b := []byte(`{"event_id_provider":"e1","provider":"papa","market_name":"Match Odds","runner":"Home","tournament":"Cup","provider_url":"https://x"}`)

	oppA, err := Opportunity(a)
	if err != nil {
		t.Fatalf("normalize a: %v", err)
	}
	oppB, err := Opportunity(b)
	if err != nil {
		t.Fatalf("normalize b: %v", err)
	}

	if oppA.ID != oppB.ID {
		t.Errorf("identities differ: %q vs %q", oppA.ID, oppB.ID)
	}
}

func TestArbPercentageRecomputedFromOdds(t *testing.T) {
	// Raw arb_percentage is stale once both odds are known.
	data := []byte(`{
		"event_id_provider": "e1",
		"provider": "papa",
		"market_name": "Match Odds",
		"runner": "Home",
		"arb_percentage": 5.0,
		"back_odds": 3.85,
		"lay_odds": 1.17
	}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	want := (3.85 - 1.17) / 1.17 * 100 // ~229.06
	if math.Abs(opp.ArbPercentage-want) > 0.01 {
		t.Errorf("expected recomputed arb ~%.2f, got %.2f", want, opp.ArbPercentage)
	}
}

func TestArbPercentageZeroLayGuard(t *testing.T) {
	data := []byte(`{"event_id_provider":"e1","provider":"papa","market_name":"m","runner":"r","arb_percentage":9.9,"back_odds":2.0,"lay_odds":0}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	if opp.ArbPercentage != 0 {
		t.Errorf("expected division artifact clamped to 0, got %.2f", opp.ArbPercentage)
	}
}

func TestOpportunityStringOdds(t *testing.T) {
	// Some producers quote numerics.
	data := []byte(`{"event_id_provider":"e1","provider":"papa","market_name":"m","runner":"r","back_odds":"2.50","lay_odds":"2.00"}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	if opp.BackOdds != 2.5 || opp.LayOdds != 2.0 {
		t.Errorf("unexpected odds: back=%.2f lay=%.2f", opp.BackOdds, opp.LayOdds)
	}

	if math.Abs(opp.ArbPercentage-25.0) > 0.001 {
		t.Errorf("expected recomputed arb 25.0, got %.2f", opp.ArbPercentage)
	}
}

func TestOpportunityDefaults(t *testing.T) {
	data := []byte(`{"event_id_provider":"e1"}`)

	opp, err := Opportunity(data)
	if err != nil {
		t.Fatalf("Opportunity failed: %v", err)
	}

	if opp.Provider != "unknown" || opp.Sport != "unknown" || opp.MarketName != "unknown" || opp.Runner != "unknown" {
		t.Errorf("expected unknown defaults, got %+v", opp)
	}

	if opp.ArbPercentage != 0 {
		t.Errorf("expected zero arb default, got %.2f", opp.ArbPercentage)
	}
}

func TestOpportunityMissingIdentity(t *testing.T) {
	data := []byte(`{"teams":"A vs B","arb_percentage":5.0}`)

	_, err := Opportunity(data)
	if !errors.Is(err, types.ErrMissingIdentity) {
		t.Errorf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestBatchSkipsMalformedMembers(t *testing.T) {
	logger := zap.NewNop()
	data := []byte(`[
		{"event_id_provider":"e1","provider":"papa","market_name":"m","runner":"r"},
		{"teams":"no identity here"},
		{"event_id_provider":"e2","provider":"onwin","market_name":"m","runner":"r"}
	]`)

	opps := Batch(data, logger)
	if len(opps) != 2 {
		t.Fatalf("expected 2 normalized records, got %d", len(opps))
	}

	if opps[0].EventIDProvider != "e1" || opps[1].EventIDProvider != "e2" {
		t.Errorf("unexpected batch members: %v", opps)
	}
}

func TestBatchSingleObject(t *testing.T) {
	logger := zap.NewNop()
	opps := Batch([]byte(`{"event_id_provider":"e1","provider":"papa","market_name":"m","runner":"r"}`), logger)
	if len(opps) != 1 {
		t.Fatalf("expected 1 record, got %d", len(opps))
	}
}
