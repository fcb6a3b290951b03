package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/datasource"
	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/metrics"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/repository"
)

// WeekFetcher retrieves the week's quotes across sports
type WeekFetcher interface {
	FetchWeek(ctx context.Context, sports []models.Sport, includeProps bool) ([]models.MarketQuote, error)
	ClearCache()
}

// SnapshotStore persists fetched quote snapshots
type SnapshotStore interface {
	Save(ctx context.Context, snap *models.Snapshot) error
	Latest(ctx context.Context) (*models.Snapshot, error)
}

// RefreshSummary describes a completed snapshot refresh
type RefreshSummary struct {
	SnapshotID  uuid.UUID                          `json:"snapshot_id"`
	FetchTime   time.Time                          `json:"fetch_time"`
	TotalQuotes int                                `json:"total_quotes"`
	Sports      map[models.Sport]models.SportCount `json:"sports"`
}

// SnapshotStatus describes the stored snapshot, if any
type SnapshotStatus struct {
	HasStoredData bool       `json:"has_stored_data"`
	SnapshotID    *uuid.UUID `json:"snapshot_id,omitempty"`
	FetchTime     *time.Time `json:"fetch_time,omitempty"`
	TotalMarkets  int        `json:"total_markets"`
}

// OddsServiceConfig configures the odds service
type OddsServiceConfig struct {
	Sports       []models.Sport
	StoreName    string
	MaxDaysAhead int
	BestOddsOnly bool
}

// OddsService fetches, stores and loads quote snapshots
type OddsService struct {
	cfg     OddsServiceConfig
	fetcher WeekFetcher
	store   SnapshotStore
	runs    repository.RunRepository
	audit   *logger.AuditLogger
	logger  *logrus.Logger
	now     func() time.Time

	mu        sync.RWMutex
	listeners []func(RefreshSummary)
}

// NewOddsService creates a new odds service. runs may be nil when run
// history is not persisted.
func NewOddsService(cfg OddsServiceConfig, fetcher WeekFetcher, store SnapshotStore, runs repository.RunRepository, log *logrus.Logger) *OddsService {
	if cfg.MaxDaysAhead <= 0 {
		cfg.MaxDaysAhead = 7
	}
	return &OddsService{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		runs:    runs,
		audit:   logger.NewAuditLogger(log),
		logger:  log,
		now:     time.Now,
	}
}

// OnRefresh registers a callback invoked after every successful refresh
func (s *OddsService) OnRefresh(fn func(RefreshSummary)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// RefreshSnapshot bypasses the response cache, fetches every sport with props
// and stores the result as a new snapshot
func (s *OddsService) RefreshSnapshot(ctx context.Context) (*models.Snapshot, error) {
	start := time.Now()
	s.fetcher.ClearCache()

	quotes, err := s.fetcher.FetchWeek(ctx, s.cfg.Sports, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}

	snap := &models.Snapshot{
		ID:        uuid.New(),
		FetchedAt: s.now().UTC(),
		Quotes:    quotes,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.audit.LogSnapshotStored(snap.ID.String(), len(quotes), snap.FetchedAt, s.cfg.StoreName)
	s.logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID,
		"quotes":      len(quotes),
		"duration":    time.Since(start),
	}).Info("Snapshot refreshed")

	summary := NewRefreshSummary(snap)
	s.mu.RLock()
	listeners := append([]func(RefreshSummary){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(summary)
	}

	return snap, nil
}

// NewRefreshSummary tallies a snapshot per sport
func NewRefreshSummary(snap *models.Snapshot) RefreshSummary {
	return RefreshSummary{
		SnapshotID:  snap.ID,
		FetchTime:   snap.FetchedAt,
		TotalQuotes: len(snap.Quotes),
		Sports:      snap.CountBySport(),
	}
}

// LoadQuotes returns the stored snapshot's quotes for future events within
// the lookahead window. When nothing usable is stored it falls back to a live
// fetch. The snapshot ID is nil for live quotes.
func (s *OddsService) LoadQuotes(ctx context.Context) ([]models.MarketQuote, *uuid.UUID, error) {
	snap, err := s.store.Latest(ctx)
	switch {
	case err == nil:
		metrics.SnapshotAgeSeconds.Set(s.now().Sub(snap.FetchedAt).Seconds())
		quotes := datasource.FilterUpcoming(snap.Quotes, s.now(), s.cfg.MaxDaysAhead)
		if len(quotes) > 0 {
			s.logger.WithFields(logrus.Fields{
				"snapshot_id": snap.ID,
				"stored":      len(snap.Quotes),
				"upcoming":    len(quotes),
			}).Debug("Loaded stored quotes")
			id := snap.ID
			return s.prices(quotes), &id, nil
		}
		s.logger.WithField("snapshot_id", snap.ID).Info("Stored snapshot has no upcoming events, fetching live")
	case errors.Is(err, models.ErrNoSnapshot):
		s.logger.Info("No stored snapshot, fetching live")
	default:
		s.logger.WithError(err).Warn("Failed to load stored snapshot, fetching live")
	}

	quotes, err := s.fetcher.FetchWeek(ctx, s.cfg.Sports, false)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch live odds: %w", err)
	}
	return s.prices(quotes), nil, nil
}

func (s *OddsService) prices(quotes []models.MarketQuote) []models.MarketQuote {
	if s.cfg.BestOddsOnly {
		return datasource.BestOddsPerSelection(quotes)
	}
	return quotes
}

// Status reports on the stored snapshot
func (s *OddsService) Status(ctx context.Context) (*SnapshotStatus, error) {
	snap, err := s.store.Latest(ctx)
	if errors.Is(err, models.ErrNoSnapshot) {
		return &SnapshotStatus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &SnapshotStatus{
		HasStoredData: true,
		SnapshotID:    &snap.ID,
		FetchTime:     &snap.FetchedAt,
		TotalMarkets:  len(snap.Quotes),
	}, nil
}

// PersistRun records a pipeline run when run history is enabled
func (s *OddsService) PersistRun(ctx context.Context, run *models.PipelineRun) error {
	if s.runs == nil {
		return nil
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	s.audit.LogRunPersisted(run.ID.String(), len(run.Recommendations), run.Parlay.NumLegs, run.Parlay.CombinedOdds)
	return nil
}
