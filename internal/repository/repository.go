// Package repository provides PostgreSQL persistence for snapshots, runs and team stats.
package repository

import (
	"fmt"

	"github.com/yourusername/clever-multi/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Snapshot  SnapshotRepository
	Run       RunRepository
	TeamStats TeamStatsRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Snapshot:  NewPostgresSnapshotRepository(db),
		Run:       NewPostgresRunRepository(db),
		TeamStats: NewPostgresTeamStatsRepository(db),
	}, nil
}
