package selection

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/signals"
)

// Filter runs the two selection stages
type Filter struct {
	cfg    Config
	logger *logger.PipelineLogger
}

// NewFilter creates a new filter
func NewFilter(cfg Config, log *logrus.Logger) *Filter {
	return &Filter{
		cfg:    cfg,
		logger: logger.NewPipelineLogger(log),
	}
}

// Config returns the filter configuration
func (f *Filter) Config() Config {
	return f.cfg
}

// passesStage1 applies the four numeric predicates
func (f *Filter) passesStage1(a *models.AnalyzedSelection) bool {
	if a.DecimalOdds < f.cfg.MinOdds || a.DecimalOdds > f.cfg.MaxOdds {
		return false
	}
	modelPct := pct(a.ModelProbability)
	if modelPct < f.cfg.Stage1MinModelProb {
		return false
	}
	if ev.Round(modelPct-pct(a.ImpliedProbability), 2) < f.cfg.Stage1MinEdge {
		return false
	}
	return pct(a.ExpectedValue) >= f.cfg.Stage1MinEV
}

// Stage1 filters, ranks by model probability then EV, and deduplicates.
// The input slice is not modified.
func (f *Filter) Stage1(analyzed []models.AnalyzedSelection) []models.AnalyzedSelection {
	start := time.Now()

	out := make([]models.AnalyzedSelection, 0, len(analyzed))
	for i := range analyzed {
		if f.passesStage1(&analyzed[i]) {
			out = append(out, analyzed[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModelProbability != out[j].ModelProbability {
			return out[i].ModelProbability > out[j].ModelProbability
		}
		return out[i].ExpectedValue > out[j].ExpectedValue
	})

	out = Deduplicate(out)
	if f.cfg.Stage1CandidateLimit > 0 && len(out) > f.cfg.Stage1CandidateLimit {
		out = out[:f.cfg.Stage1CandidateLimit]
	}

	f.logger.LogStageCompleted("stage1", len(analyzed), len(out), ms(start))
	return out
}

// Enrich scores one candidate and builds its recommended leg
func (f *Filter) Enrich(a models.AnalyzedSelection, deriver *signals.Deriver) models.RecommendedLeg {
	q := &a.MarketQuote
	fav := deriver.Derive(q.SelectionName, q.Sport, q.DecimalOdds, true)

	var opp *models.TeamSignal
	if opponent := q.Opponent(); opponent != "" {
		s := deriver.Derive(opponent, q.Sport, signals.OpponentOdds(q.DecimalOdds, 2), false)
		opp = &s
	}

	rivalry := signals.CheckRivalry(q.HomeTeam, q.AwayTeam, q.Sport)

	consistency := fav.ConsistencyScore
	leg := models.RecommendedLeg{
		AnalyzedSelection: a,
		CompositeScore:    CompositeScore(&a, fav, opp, rivalry, f.cfg.RivalryPenalty),
		Rationale:         Rationale(&a, fav, opp, rivalry, f.cfg.RivalryPenalty),
		RivalryFlag:       rivalry.IsRivalry,
		RivalryName:       rivalry.Name,
		FavoriteStats: models.StatsSummary{
			WinRate:     fav.WinRate,
			Last10:      fav.Last10Record,
			PointDiff:   fav.PointDifferential,
			Consistency: &consistency,
		},
	}
	if opp != nil {
		leg.OpponentStats = &models.StatsSummary{
			WinRate:   opp.WinRate,
			Last10:    opp.Last10Record,
			PointDiff: opp.PointDifferential,
		}
	}
	return leg
}

// Stage2 scores every candidate, ranks by composite score and keeps the first
// leg per (event, selection). limit <= 0 means no limit.
func (f *Filter) Stage2(candidates []models.AnalyzedSelection, deriver *signals.Deriver, limit int) []models.RecommendedLeg {
	start := time.Now()

	scored := make([]models.RecommendedLeg, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, f.Enrich(c, deriver))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})

	type legKey struct{ event, selection string }
	seen := make(map[legKey]struct{}, len(scored))
	legs := make([]models.RecommendedLeg, 0, len(scored))
	for _, leg := range scored {
		k := legKey{leg.EventKey(), leg.SelectionName}
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			legs = append(legs, leg)
		}
		if limit > 0 && len(legs) >= limit {
			break
		}
	}

	f.logger.LogStageCompleted("stage2", len(candidates), len(legs), ms(start))
	return legs
}

// Recommend runs both stages and returns the Stage 1 candidates alongside
// the final legs
func (f *Filter) Recommend(analyzed []models.AnalyzedSelection, deriver *signals.Deriver, limit int) ([]models.AnalyzedSelection, []models.RecommendedLeg) {
	candidates := f.Stage1(analyzed)
	return candidates, f.Stage2(candidates, deriver, limit)
}

func pct(x float64) float64 {
	return ev.Round(x*100, 2)
}

func ms(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
