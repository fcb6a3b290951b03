package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/clever-multi/internal/models"
)

// SnapshotRepository defines the interface for stored quote snapshots
type SnapshotRepository interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Latest(ctx context.Context) (*models.Snapshot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Snapshot, error)
}

// RunRepository defines the interface for pipeline run history
type RunRepository interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineRun, error)
	Latest(ctx context.Context) (*models.PipelineRun, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error)
}

// TeamStatsRepository defines the interface for team statistics
type TeamStatsRepository interface {
	Upsert(ctx context.Context, stats []models.TeamSignal) error
	GetBySport(ctx context.Context, sport models.Sport) ([]models.TeamSignal, error)
	GetAll(ctx context.Context) ([]models.TeamSignal, error)
}
