package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/clever-multi/internal/database"
	"github.com/yourusername/clever-multi/internal/models"
)

const teamStatsColumns = `team_name, sport, win_rate, last_10_record, last_5_record,
	point_differential, consistency_score, strength_rating, current_streak`

// PostgresTeamStatsRepository implements TeamStatsRepository for PostgreSQL
type PostgresTeamStatsRepository struct {
	db *database.DB
}

// NewPostgresTeamStatsRepository creates a new team stats repository
func NewPostgresTeamStatsRepository(db *database.DB) TeamStatsRepository {
	return &PostgresTeamStatsRepository{db: db}
}

// Upsert inserts or replaces team statistics in a single batch
func (r *PostgresTeamStatsRepository) Upsert(ctx context.Context, stats []models.TeamSignal) error {
	if len(stats) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(`
			INSERT INTO team_stats (`+teamStatsColumns+`, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
			ON CONFLICT (sport, team_name) DO UPDATE SET
				win_rate = EXCLUDED.win_rate,
				last_10_record = EXCLUDED.last_10_record,
				last_5_record = EXCLUDED.last_5_record,
				point_differential = EXCLUDED.point_differential,
				consistency_score = EXCLUDED.consistency_score,
				strength_rating = EXCLUDED.strength_rating,
				current_streak = EXCLUDED.current_streak,
				updated_at = NOW()
		`, s.TeamName, string(s.Sport), s.WinRate, s.Last10Record, s.Last5Record,
			s.PointDifferential, s.ConsistencyScore, s.StrengthRating, s.CurrentStreak)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range stats {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert team stats: %w", err)
		}
	}
	return nil
}

// GetBySport returns every stored team of a sport
func (r *PostgresTeamStatsRepository) GetBySport(ctx context.Context, sport models.Sport) ([]models.TeamSignal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamStatsColumns+` FROM team_stats WHERE sport = $1 ORDER BY team_name`, string(sport))
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	return collectTeamStats(rows)
}

// GetAll returns every stored team
func (r *PostgresTeamStatsRepository) GetAll(ctx context.Context) ([]models.TeamSignal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamStatsColumns+` FROM team_stats ORDER BY sport, team_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	return collectTeamStats(rows)
}

func collectTeamStats(rows pgx.Rows) ([]models.TeamSignal, error) {
	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TeamSignal])
	if err != nil {
		return nil, fmt.Errorf("failed to scan team stats: %w", err)
	}
	return stats, nil
}
