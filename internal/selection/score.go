package selection

import (
	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/models"
)

const (
	streakBonus        = 2.0
	favoriteStreakMin  = 3
	opponentStreakMax  = -2
	defaultConsistency = 0.5
)

// CompositeScore ranks a candidate from its analysis, the favorite's and
// opponent's signals and the rivalry lookup. opp may be nil.
func CompositeScore(a *models.AnalyzedSelection, fav models.TeamSignal, opp *models.TeamSignal, rivalry models.RivalryInfo, rivalryPenalty float64) float64 {
	consistency := fav.ConsistencyScore
	if consistency == 0 {
		consistency = defaultConsistency
	}
	edge := a.ModelProbability - a.ImpliedProbability

	score := 100 * (0.4*a.ModelProbability +
		0.3*(a.ExpectedValue*20) +
		0.2*(edge*10) +
		0.1*(consistency*100))

	if rivalry.IsRivalry {
		score -= rivalryPenalty * rivalry.Intensity
	}
	if fav.CurrentStreak >= favoriteStreakMin {
		score += streakBonus
	}
	if opp != nil && opp.CurrentStreak <= opponentStreakMax {
		score += streakBonus
	}
	return ev.Round(score, 2)
}
