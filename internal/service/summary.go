package service

import (
	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/models"
)

// sampleLegs is the leg count of the sample multi quoted in the summary
const sampleLegs = 4

// WeeklySummary aggregates a pipeline run for reporting
type WeeklySummary struct {
	TotalMarketsAnalyzed    int                     `json:"total_markets_analyzed"`
	RecommendedLegsCount    int                     `json:"recommended_legs_count"`
	SportsBreakdown         map[models.Sport]int    `json:"sports_breakdown"`
	AverageOdds             float64                 `json:"average_odds"`
	AverageModelProbability float64                 `json:"average_model_probability"`
	AverageEV               float64                 `json:"average_ev"`
	AverageCompositeScore   float64                 `json:"average_composite_score"`
	Sample4LegMultiOdds     float64                 `json:"sample_4_leg_multi_odds"`
	RivalryMatchupsIncluded int                     `json:"rivalry_matchups_included"`
	RecommendedLegs         []models.RecommendedLeg `json:"recommended_legs"`
}

// Summarize builds the weekly summary of a run. Probability and EV averages
// stay fractional and keep four decimals; odds and scores keep two.
func Summarize(result *RunResult) WeeklySummary {
	legs := result.Run.Recommendations
	summary := WeeklySummary{
		TotalMarketsAnalyzed: len(result.Analyzed),
		RecommendedLegsCount: len(legs),
		SportsBreakdown:      make(map[models.Sport]int),
		Sample4LegMultiOdds:  1,
		RecommendedLegs:      legs,
	}
	if summary.RecommendedLegs == nil {
		summary.RecommendedLegs = []models.RecommendedLeg{}
	}

	var odds, prob, evSum, score float64
	for i, leg := range legs {
		summary.SportsBreakdown[leg.Sport]++
		odds += leg.DecimalOdds
		prob += leg.ModelProbability
		evSum += leg.ExpectedValue
		score += leg.CompositeScore
		if leg.RivalryFlag {
			summary.RivalryMatchupsIncluded++
		}
		if i < sampleLegs {
			summary.Sample4LegMultiOdds *= leg.DecimalOdds
		}
	}

	if n := float64(len(legs)); n > 0 {
		summary.AverageOdds = ev.Round(odds/n, 2)
		summary.AverageModelProbability = ev.Round(prob/n, 4)
		summary.AverageEV = ev.Round(evSum/n, 4)
		summary.AverageCompositeScore = ev.Round(score/n, 2)
	}
	summary.Sample4LegMultiOdds = ev.Round(summary.Sample4LegMultiOdds, 2)
	return summary
}
