package service

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const latestKey = "latest"

// Analyzer serves the latest pipeline result over the current quotes,
// recomputing it when the cached result expires or a refresh lands
type Analyzer struct {
	odds     *OddsService
	pipeline *Pipeline
	results  *cache.Cache
	ttl      time.Duration
	logger   *logrus.Logger
}

// NewAnalyzer creates a new analyzer. A ttl of zero reruns the pipeline on
// every call.
func NewAnalyzer(odds *OddsService, pipeline *Pipeline, ttl time.Duration, log *logrus.Logger) *Analyzer {
	a := &Analyzer{
		odds:     odds,
		pipeline: pipeline,
		results:  cache.New(ttl, 2*ttl+time.Minute),
		ttl:      ttl,
		logger:   log,
	}
	odds.OnRefresh(func(RefreshSummary) { a.Invalidate() })
	return a
}

// Pipeline returns the underlying pipeline
func (a *Analyzer) Pipeline() *Pipeline {
	return a.pipeline
}

// Latest returns the cached result or runs the pipeline over the current
// quotes. Fresh runs are persisted when run history is enabled.
func (a *Analyzer) Latest(ctx context.Context, trigger string) (*RunResult, error) {
	if a.ttl > 0 {
		if cached, ok := a.results.Get(latestKey); ok {
			return cached.(*RunResult), nil
		}
	}

	quotes, snapshotID, err := a.odds.LoadQuotes(ctx)
	if err != nil {
		return nil, err
	}

	result, err := a.pipeline.Run(ctx, quotes, trigger)
	if err != nil {
		return nil, err
	}
	result.Run.SnapshotID = snapshotID

	if err := a.odds.PersistRun(ctx, &result.Run); err != nil {
		a.logger.WithError(err).WithField("run_id", result.Run.ID).Warn("Run history not recorded")
	}

	if a.ttl > 0 {
		a.results.SetDefault(latestKey, result)
	}
	return result, nil
}

// Invalidate drops the cached result
func (a *Analyzer) Invalidate() {
	a.results.Flush()
}
