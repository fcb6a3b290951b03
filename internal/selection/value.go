package selection

import (
	"sort"

	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/signals"
)

// ValueBets returns the deduplicated value bets sorted by EV descending,
// each with a rationale
func (f *Filter) ValueBets(analyzed []models.AnalyzedSelection, deriver *signals.Deriver) []models.ValueBet {
	candidates := make([]models.AnalyzedSelection, 0, len(analyzed))
	for _, a := range analyzed {
		if a.IsValueBet {
			candidates = append(candidates, a)
		}
	}
	candidates = Deduplicate(candidates)

	bets := make([]models.ValueBet, 0, len(candidates))
	for i := range candidates {
		a := &candidates[i]
		odds := a.DecimalOdds
		fav := deriver.Derive(a.SelectionName, a.Sport, odds, odds < 2.0)

		var opp *models.TeamSignal
		if opponent := a.Opponent(); opponent != "" {
			s := deriver.Derive(opponent, a.Sport, signals.OpponentOdds(odds, f.cfg.ValueBetOppCeiling), false)
			opp = &s
		}
		rivalry := signals.CheckRivalry(a.HomeTeam, a.AwayTeam, a.Sport)

		bets = append(bets, models.ValueBet{
			AnalyzedSelection: *a,
			Rationale:         Rationale(a, fav, opp, rivalry, f.cfg.RivalryPenalty),
		})
	}

	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].ExpectedValue > bets[j].ExpectedValue
	})
	return bets
}

// BySport keeps value bets for one sport
func BySport(bets []models.ValueBet, sport models.Sport) []models.ValueBet {
	out := make([]models.ValueBet, 0, len(bets))
	for _, b := range bets {
		if b.Sport == sport {
			out = append(out, b)
		}
	}
	return out
}

// Top returns at most n bets; n <= 0 returns all
func Top(bets []models.ValueBet, n int) []models.ValueBet {
	if n <= 0 || n >= len(bets) {
		return bets
	}
	return bets[:n]
}

// HighConfidence keeps bets flagged as high confidence
func HighConfidence(bets []models.ValueBet) []models.ValueBet {
	out := make([]models.ValueBet, 0, len(bets))
	for _, b := range bets {
		if b.IsHighConfidence {
			out = append(out, b)
		}
	}
	return out
}
