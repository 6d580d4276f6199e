package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/types"
)

func TestPostgresSinkRecordSighting(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	defer db.Close()

	sink := &PostgresSink{db: db, logger: zap.NewNop()}

	opp := &types.Opportunity{
		ID:                "e1-papa-Match Odds-Home",
		Provider:          "papa",
		Sport:             "soccer",
		MarketName:        "Match Odds",
		Runner:            "Home",
		MarketCategory:    "match-odds",
		SelectionCategory: "home",
		ArbPercentage:     7.5,
		BackOdds:          3.0,
		LayOdds:           2.8,
		BetfairMarketID:   "1.234",
		EventIDProvider:   "e1",
		Teams:             "A vs B",
		Tournament:        "Cup",
		LastSeen:          time.Now(),
	}

	mock.ExpectExec("INSERT INTO opportunity_sightings").
		WithArgs(
			opp.ID, opp.Provider, opp.Sport, opp.MarketName, opp.Runner,
			opp.MarketCategory, opp.SelectionCategory, opp.ArbPercentage,
			opp.BackOdds, opp.LayOdds, opp.BetfairMarketID, opp.EventIDProvider,
			opp.Teams, opp.Tournament, opp.LastSeen,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = sink.RecordSighting(context.Background(), opp)
	if err != nil {
		t.Fatalf("RecordSighting failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %v", err)
	}
	defer db.Close()

	sink := &PostgresSink{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO opportunity_sightings").
		WillReturnError(context.DeadlineExceeded)

	err = sink.RecordSighting(context.Background(), &types.Opportunity{ID: "x"})
	if err == nil {
		t.Fatal("expected error from failed insert")
	}
}

func TestConsoleSinkRecordSighting(t *testing.T) {
	sink := NewConsoleSink(zap.NewNop())
	defer sink.Close()

	err := sink.RecordSighting(context.Background(), &types.Opportunity{ID: "x"})
	if err != nil {
		t.Fatalf("console sink must not fail: %v", err)
	}
}
