// Package scheduler runs the twice-weekly odds fetch.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/models"
)

// DefaultFetchSchedule runs at 06:00 UTC on Monday and Thursday
const DefaultFetchSchedule = "0 6 * * 1,4"

// FetchDays describes the fetch days for display
const FetchDays = "Monday and Thursday"

// IsFetchDay reports whether t falls on a Monday or Thursday
func IsFetchDay(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Monday || wd == time.Thursday
}

// SnapshotRefresher fetches fresh odds and stores them
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// Scheduler manages the scheduled fetch job
type Scheduler struct {
	cron            *cron.Cron
	refresher       SnapshotRefresher
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler running in UTC
func NewScheduler(refresher SnapshotRefresher, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		refresher:       refresher,
		logger:          logger.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      10 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleFetch registers the snapshot refresh under a cron expression
func (s *Scheduler) ScheduleFetch(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if cronExpression == "" {
		cronExpression = DefaultFetchSchedule
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runFetch)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled odds fetch")
	return nil
}

func (s *Scheduler) runFetch() {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	s.logger.Info("Starting scheduled odds fetch")
	snap, err := s.refresher.RefreshSnapshot(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled odds fetch failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID,
		"quotes":      len(snap.Quotes),
	}).Info("Scheduled odds fetch completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop stops the scheduler, waiting for a running job up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	var nextRun time.Time
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}
	return nextRun
}

// NextFetch computes the next fire time of a schedule after t without
// starting anything
func NextFetch(cronExpression string, t time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(cronExpression)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", cronExpression, err)
	}
	return sched.Next(t.In(time.UTC)), nil
}
