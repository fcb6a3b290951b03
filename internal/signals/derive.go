// Package signals derives team-strength indicators and rivalry metadata
// used by the deep prune.
package signals

import (
	"fmt"
	"math"

	"github.com/yourusername/clever-multi/internal/ev"
	"github.com/yourusername/clever-multi/internal/models"
)

// DeriveFromOdds builds synthetic team indicators from a market price.
// The result is a pure function of its inputs.
func DeriveFromOdds(team string, sport models.Sport, odds float64, isFavorite bool) models.TeamSignal {
	implied := 0.5
	if odds > 1 {
		implied = 1 / odds
	}

	var winRate, pointDiff, consistency, strength float64
	var streak int
	if isFavorite && odds <= 1.25 {
		gap := 1.25 - odds
		winRate = math.Min(0.65+gap*2, 0.85)
		pointDiff = gap*50 + 3
		consistency = 0.65 + implied*0.2
		strength = 50 + implied*40
		streak = int(math.Max(1, math.Round(gap*10)))
	} else {
		winRate = implied * 0.9
		pointDiff = (implied - 0.5) * 20
		consistency = 0.4 + implied*0.3
		strength = 30 + implied*35
		streak = int(math.Round((implied - 0.5) * 4))
	}

	wins := int(winRate * 10)
	wins5 := wins/2 + 1
	if wins5 > 5 {
		wins5 = 5
	}

	return models.TeamSignal{
		TeamName:          team,
		Sport:             sport,
		WinRate:           ev.Round(winRate, 3),
		Last10Record:      fmt.Sprintf("%d-%d", wins, 10-wins),
		Last5Record:       fmt.Sprintf("%d-%d", wins5, 5-wins5),
		PointDifferential: ev.Round(pointDiff, 1),
		ConsistencyScore:  ev.Round(math.Min(consistency, 0.95), 2),
		StrengthRating:    ev.Round(math.Min(strength, 90), 1),
		CurrentStreak:     streak,
	}
}

// OpponentOdds approximates the other side's price for a two-way market.
// Prices outside (1, ceiling) use the 3.0 fallback.
func OpponentOdds(odds, ceiling float64) float64 {
	if odds > 1 && odds < ceiling {
		return 1 / (1 - 1/odds)
	}
	return 3.0
}
