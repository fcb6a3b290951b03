package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/clever-multi/internal/database"
	"github.com/yourusername/clever-multi/internal/models"
)

const runColumns = `id, snapshot_id, quotes_received, quotes_skipped, stage1_count,
	recommendations, parlay, started_at, completed_at`

// PostgresRunRepository implements RunRepository for PostgreSQL
type PostgresRunRepository struct {
	db *database.DB
}

// NewPostgresRunRepository creates a new run repository
func NewPostgresRunRepository(db *database.DB) RunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a completed run. Legs and parlay are stored as JSONB.
func (r *PostgresRunRepository) Create(ctx context.Context, run *models.PipelineRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}

	recs := run.Recommendations
	if recs == nil {
		recs = []models.RecommendedLeg{}
	}
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to encode recommendations: %w", err)
	}
	parlayJSON, err := json.Marshal(run.Parlay)
	if err != nil {
		return fmt.Errorf("failed to encode parlay: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO pipeline_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		run.ID, run.SnapshotID, run.QuotesReceived, run.QuotesSkipped, run.Stage1Count,
		recsJSON, parlayJSON, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error) {
	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return run, err
}

// Latest retrieves the most recent run
func (r *PostgresRunRepository) Latest(ctx context.Context) (*models.PipelineRun, error) {
	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return run, err
}

// ListRecent returns up to limit runs, newest first
func (r *PostgresRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	rows, err := r.db.Query(ctx, `SELECT `+runColumns+` FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.PipelineRun, error) {
	run := &models.PipelineRun{}
	var recsJSON, parlayJSON []byte
	err := row.Scan(
		&run.ID, &run.SnapshotID, &run.QuotesReceived, &run.QuotesSkipped, &run.Stage1Count,
		&recsJSON, &parlayJSON, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
	}
	if err := json.Unmarshal(recsJSON, &run.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	if err := json.Unmarshal(parlayJSON, &run.Parlay); err != nil {
		return nil, fmt.Errorf("failed to decode parlay: %w", err)
	}
	return run, nil
}
