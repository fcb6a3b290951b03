package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/clever-multi/internal/database"
	"github.com/yourusername/clever-multi/internal/models"
)

var quoteColumns = []string{
	"snapshot_id", "position", "event_id", "sport", "home_team", "away_team", "commence_time",
	"market_type", "selection_name", "decimal_odds", "line", "side", "bookmaker", "is_prop", "prop_player",
}

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Save writes the snapshot header and bulk-copies its quotes in one transaction
func (r *PostgresSnapshotRepository) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO quote_snapshots (id, fetched_at, quote_count) VALUES ($1, $2, $3)`,
			snap.ID, snap.FetchedAt, len(snap.Quotes),
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if len(snap.Quotes) == 0 {
			return nil
		}

		rows := make([][]interface{}, len(snap.Quotes))
		for i, q := range snap.Quotes {
			rows[i] = []interface{}{
				snap.ID, i, q.EventID, string(q.Sport), q.HomeTeam, q.AwayTeam, q.CommenceTime,
				string(q.MarketType), q.SelectionName, q.DecimalOdds, q.Line, q.Side, q.Bookmaker, q.IsProp, q.PropPlayer,
			}
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"snapshot_quotes"}, quoteColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("failed to copy snapshot quotes: %w", err)
		}
		if count != int64(len(rows)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(rows))
		}
		return nil
	})
}

// Latest returns the most recently fetched snapshot
func (r *PostgresSnapshotRepository) Latest(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	err := r.db.QueryRow(ctx,
		`SELECT id, fetched_at FROM quote_snapshots ORDER BY fetched_at DESC LIMIT 1`,
	).Scan(&snap.ID, &snap.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	if snap.Quotes, err = r.quotes(ctx, snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetByID returns one snapshot with its quotes
func (r *PostgresSnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	err := r.db.QueryRow(ctx,
		`SELECT id, fetched_at FROM quote_snapshots WHERE id = $1`, id,
	).Scan(&snap.ID, &snap.FetchedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if snap.Quotes, err = r.quotes(ctx, snap.ID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *PostgresSnapshotRepository) quotes(ctx context.Context, id uuid.UUID) ([]models.MarketQuote, error) {
	rows, err := r.db.Query(ctx, `
		SELECT event_id, sport, home_team, away_team, commence_time, market_type, selection_name,
		       decimal_odds, line, side, bookmaker, is_prop, prop_player
		FROM snapshot_quotes
		WHERE snapshot_id = $1
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot quotes: %w", err)
	}

	quotes, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.MarketQuote])
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot quotes: %w", err)
	}
	return quotes, nil
}
