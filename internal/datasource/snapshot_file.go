package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/clever-multi/internal/models"
)

// fileSnapshot is the on-disk layout: quotes grouped by sport, split into
// featured markets and props, with per-group counts
type fileSnapshot struct {
	ID        uuid.UUID                    `json:"id"`
	FetchTime time.Time                    `json:"fetch_time"`
	Sports    map[models.Sport]fileSportSet `json:"sports"`
}

type fileSportSet struct {
	H2H        []models.MarketQuote `json:"h2h"`
	Props      []models.MarketQuote `json:"props"`
	H2HCount   int                  `json:"h2h_count"`
	PropsCount int                  `json:"props_count"`
}

// FileSnapshotStore keeps the latest snapshot in a single JSON file
type FileSnapshotStore struct {
	path string
}

// NewFileSnapshotStore creates a store writing to path
func NewFileSnapshotStore(path string) *FileSnapshotStore {
	return &FileSnapshotStore{path: path}
}

// Path returns the backing file
func (s *FileSnapshotStore) Path() string { return s.path }

// Save replaces the stored snapshot. The file is written atomically.
func (s *FileSnapshotStore) Save(_ context.Context, snap *models.Snapshot) error {
	out := fileSnapshot{
		ID:        snap.ID,
		FetchTime: snap.FetchedAt,
		Sports:    make(map[models.Sport]fileSportSet),
	}
	for _, q := range snap.Quotes {
		set := out.Sports[q.Sport]
		if q.IsProp {
			set.Props = append(set.Props, q)
			set.PropsCount++
		} else {
			set.H2H = append(set.H2H, q)
			set.H2HCount++
		}
		out.Sports[q.Sport] = set
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Latest loads the stored snapshot, or models.ErrNoSnapshot when none exists
func (s *FileSnapshotStore) Latest(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var in fileSnapshot
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	snap := &models.Snapshot{ID: in.ID, FetchedAt: in.FetchTime}
	for _, sport := range models.SupportedSports() {
		set, ok := in.Sports[sport]
		if !ok {
			continue
		}
		snap.Quotes = append(snap.Quotes, set.H2H...)
		snap.Quotes = append(snap.Quotes, set.Props...)
	}
	return snap, nil
}
