package ev

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/models"
)

// Thresholds configures value and confidence classification
type Thresholds struct {
	MinEV         float64
	MinConfidence float64
}

// DefaultThresholds returns the standard classification thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{MinEV: 0.02, MinConfidence: 0.70}
}

// Engine analyzes quotes against a ranked chain of probability sources
type Engine struct {
	sources    []ProbabilitySource
	thresholds Thresholds
	logger     *logger.MLLogger
}

// NewEngine creates a new engine. Sources are tried in order; the heuristic
// is always appended as the final source.
func NewEngine(thresholds Thresholds, log *logrus.Logger, sources ...ProbabilitySource) *Engine {
	chain := make([]ProbabilitySource, 0, len(sources)+1)
	for _, s := range sources {
		if s != nil {
			chain = append(chain, s)
		}
	}
	chain = append(chain, HeuristicSource{})

	return &Engine{
		sources:    chain,
		thresholds: thresholds,
		logger:     logger.NewMLLogger(log),
	}
}

// Thresholds returns the engine's classification thresholds
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// ModelProbability returns the first successful estimate and its source name.
// Trained sources are consulted only when a context is supplied.
func (e *Engine) ModelProbability(ctx context.Context, implied float64, sc *SelectionContext) (float64, string) {
	if sc == nil {
		return HeuristicProbability(implied, nil), HeuristicSourceName
	}

	features := sc.Features(implied)
	for i, src := range e.sources {
		start := time.Now()
		p, err := src.Probability(ctx, features)
		if err == nil && (p < 0 || p > 1) {
			err = fmt.Errorf("%w: %v", ErrProbabilityOutOfRange, p)
		}
		if err != nil {
			next := HeuristicSourceName
			if i+1 < len(e.sources) {
				next = e.sources[i+1].Name()
			}
			e.logger.LogSourceDegraded(src.Name(), next, err)
			continue
		}
		e.logger.LogPredictionRequest(src.Name(), len(features), false, float64(time.Since(start).Microseconds())/1000)
		return Round(p, 4), src.Name()
	}

	return HeuristicProbability(implied, sc), HeuristicSourceName
}

// Analyze produces the probability and value assessment for one quote
func (e *Engine) Analyze(ctx context.Context, q models.MarketQuote, sc *SelectionContext) models.AnalyzedSelection {
	implied := ImpliedProbability(q.DecimalOdds)
	p, source := e.ModelProbability(ctx, implied, sc)
	ev := ExpectedValue(p, q.DecimalOdds)

	isValue := ev >= e.thresholds.MinEV
	isConfident := p >= e.thresholds.MinConfidence

	return models.AnalyzedSelection{
		MarketQuote:            q,
		ImpliedProbability:     implied,
		ModelProbability:       p,
		ExpectedValue:          ev,
		Edge:                   Edge(p, implied),
		Confidence:             ClassifyConfidence(p, ev),
		ValueRating:            ValueRating(ev),
		IsValueBet:             isValue,
		IsHighConfidence:       isConfident,
		QualifiesAsRecommended: isValue && isConfident,
		ProbabilitySource:      source,
	}
}

// AnalyzeQuote derives the context from the quote itself before analysis
func (e *Engine) AnalyzeQuote(ctx context.Context, q models.MarketQuote) models.AnalyzedSelection {
	return e.Analyze(ctx, q, ContextFromQuote(&q))
}
