// Package service wires the scoring core into runnable workflows: the
// recommendation pipeline, the weekly summary and snapshot refresh.
package service

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/metrics"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/multi"
	"github.com/yourusername/clever-multi/internal/selection"
	"github.com/yourusername/clever-multi/internal/signals"
)

// PipelineConfig configures a pipeline
type PipelineConfig struct {
	Selection       selection.Config
	Multi           multi.Config
	RecommendedLegs int
	MemoTTL         time.Duration
	Concurrency     int
}

// PipelineConfigFrom maps application configuration onto the pipeline
func PipelineConfigFrom(cfg *config.Config) PipelineConfig {
	sel := selection.DefaultConfig()
	sel.MinOdds = cfg.Selection.MinOddsFilter
	sel.MaxOdds = cfg.Selection.MaxOddsFilter
	sel.Stage1MinModelProb = cfg.Selection.Stage1MinModelProb
	sel.Stage1MinEdge = cfg.Selection.Stage1MinEdge
	sel.Stage1MinEV = cfg.Selection.Stage1MinEV
	sel.Stage1CandidateLimit = cfg.Selection.Stage1CandidateLimit
	sel.RivalryPenalty = cfg.Selection.Stage2RivalryPenalty

	return PipelineConfig{
		Selection: sel,
		Multi: multi.Config{
			TargetOdds: cfg.Multi.TargetMultiOdds,
			MaxLegs:    cfg.Multi.MaxLegsInMulti,
			Stake:      cfg.Multi.ReferenceStake,
		},
		RecommendedLegs: cfg.Selection.RecommendedLegsCount,
		MemoTTL:         cfg.MemoTTL(),
	}
}

// ThresholdsFrom maps application configuration onto engine thresholds
func ThresholdsFrom(cfg *config.Config) ev.Thresholds {
	return ev.Thresholds{
		MinEV:         cfg.Selection.MinEVThreshold,
		MinConfidence: cfg.Selection.MinConfidenceThreshold,
	}
}

// RunResult is the full output of one pipeline run
type RunResult struct {
	Run        models.PipelineRun
	Analyzed   []models.AnalyzedSelection
	Candidates []models.AnalyzedSelection
	ValueBets  []models.ValueBet
	Duration   time.Duration
}

// Pipeline analyzes quotes, selects recommendations and builds a parlay
type Pipeline struct {
	cfg       PipelineConfig
	engine    *ev.Engine
	deriver   *signals.Deriver
	filter    *selection.Filter
	builder   *multi.Builder
	validator *QuoteValidator
	logger    *logrus.Logger
	events    *logger.PipelineLogger
}

// NewPipeline creates a new pipeline
func NewPipeline(cfg PipelineConfig, engine *ev.Engine, deriver *signals.Deriver, log *logrus.Logger) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		cfg:       cfg,
		engine:    engine,
		deriver:   deriver,
		filter:    selection.NewFilter(cfg.Selection, log),
		builder:   multi.NewBuilder(cfg.Multi, log),
		validator: NewQuoteValidator(),
		logger:    log,
		events:    logger.NewPipelineLogger(log),
	}
}

// Run executes one pipeline pass over the quotes. Malformed quotes are
// skipped and counted; only context cancellation is returned as an error.
func (p *Pipeline) Run(ctx context.Context, quotes []models.MarketQuote, trigger string) (*RunResult, error) {
	start := time.Now()
	runID := uuid.New()

	p.logger.WithFields(logrus.Fields{
		"run_id":  runID,
		"quotes":  len(quotes),
		"trigger": trigger,
	}).Info("Starting pipeline run")

	valid := make([]models.MarketQuote, 0, len(quotes))
	for _, raw := range quotes {
		q := NormalizeQuote(raw)
		if err := p.validator.Validate(&q); err != nil {
			p.events.LogQuoteSkipped(q.EventID, q.SelectionName, err)
			continue
		}
		valid = append(valid, q)
	}
	skipped := len(quotes) - len(valid)
	metrics.RecordSkipped(skipped)

	analyzed, err := p.analyze(ctx, valid)
	if err != nil {
		return nil, err
	}

	deriver := p.deriver.WithMemo(signals.NewMemo(p.cfg.MemoTTL))
	candidates, legs := p.filter.Recommend(analyzed, deriver, p.cfg.RecommendedLegs)
	parlay := p.builder.BuildDefault(legs)

	valueBets := p.filter.ValueBets(analyzed, deriver)

	duration := time.Since(start)
	result := &RunResult{
		Run: models.PipelineRun{
			ID:              runID,
			QuotesReceived:  len(quotes),
			QuotesSkipped:   skipped,
			Stage1Count:     len(candidates),
			Recommendations: legs,
			Parlay:          parlay,
			StartedAt:       start.UTC(),
			CompletedAt:     time.Now().UTC(),
		},
		Analyzed:   analyzed,
		Candidates: candidates,
		ValueBets:  valueBets,
		Duration:   duration,
	}

	metrics.RecordRun(trigger, duration.Seconds(), len(candidates), len(legs))
	metrics.RecordParlay(parlay.NumLegs, parlay.CombinedOdds)
	p.events.LogRunCompleted(runID.String(), len(quotes), skipped, len(legs), float64(duration.Microseconds())/1000)

	return result, nil
}

// analyze scores every quote concurrently, preserving input order
func (p *Pipeline) analyze(ctx context.Context, quotes []models.MarketQuote) ([]models.AnalyzedSelection, error) {
	out := make([]models.AnalyzedSelection, len(quotes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i := range quotes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = p.engine.AnalyzeQuote(gctx, quotes[i])
			metrics.RecordAnalyzed(out[i].ProbabilitySource)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// BuildMulti builds a parlay from previously recommended legs with an
// explicit target and leg cap
func (p *Pipeline) BuildMulti(legs []models.RecommendedLeg, targetOdds float64, maxLegs int) models.Parlay {
	return p.builder.Build(legs, targetOdds, maxLegs)
}

// Legs returns up to limit recommended legs. A limit above the run's
// configured count re-ranks the run's Stage 1 candidates.
func (p *Pipeline) Legs(result *RunResult, limit int) []models.RecommendedLeg {
	legs := result.Run.Recommendations
	switch {
	case limit <= 0, limit == len(legs):
		return legs
	case limit < len(legs):
		return legs[:limit]
	case len(legs) >= len(result.Candidates):
		return legs
	}
	deriver := p.deriver.WithMemo(signals.NewMemo(p.cfg.MemoTTL))
	return p.filter.Stage2(result.Candidates, deriver, limit)
}
