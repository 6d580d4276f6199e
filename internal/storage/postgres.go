package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/pkg/types"
)

// PostgresSink implements Sink using PostgreSQL.
type PostgresSink struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresSink creates a new PostgreSQL sink.
func NewPostgresSink(cfg *PostgresConfig) (*PostgresSink, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-sink-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresSink{
		db:     db,
		logger: cfg.Logger,
	}, nil
}

// RecordSighting inserts the sighting into the opportunity_sightings table.
func (p *PostgresSink) RecordSighting(ctx context.Context, opp *types.Opportunity) error {
	query := `
		INSERT INTO opportunity_sightings (
			opportunity_id, provider, sport, market_name, runner,
			market_category, selection_category, arb_percentage,
			back_odds, lay_odds, betfair_market_id, event_id_provider,
			teams, tournament, seen_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := p.db.ExecContext(ctx, query,
		opp.ID,
		opp.Provider,
		opp.Sport,
		opp.MarketName,
		opp.Runner,
		opp.MarketCategory,
		opp.SelectionCategory,
		opp.ArbPercentage,
		opp.BackOdds,
		opp.LayOdds,
		opp.BetfairMarketID,
		opp.EventIDProvider,
		opp.Teams,
		opp.Tournament,
		opp.LastSeen,
	)

	if err != nil {
		return fmt.Errorf("insert sighting: %w", err)
	}

	p.logger.Debug("sighting-recorded", zap.String("opportunity-id", opp.ID))

	return nil
}

// Close closes the database connection.
func (p *PostgresSink) Close() error {
	p.logger.Info("closing-postgres-sink")
	return p.db.Close()
}
