package signals

import (
	"strings"

	"github.com/yourusername/clever-multi/internal/models"
)

// RivalryIntensity is the intensity reported for every known rivalry
const RivalryIntensity = 0.7

// Rivalry is a known team pairing
type Rivalry struct {
	TeamA string
	TeamB string
	Name  string
}

var knownRivalries = map[models.Sport][]Rivalry{
	models.SportNFL: {
		{"Dallas Cowboys", "Philadelphia Eagles", "NFC East Rivalry"},
		{"Green Bay Packers", "Chicago Bears", "Oldest NFL Rivalry"},
		{"New England Patriots", "New York Jets", "AFC East Rivalry"},
		{"Kansas City Chiefs", "Las Vegas Raiders", "AFC West Rivalry"},
		{"San Francisco 49ers", "Seattle Seahawks", "NFC West Rivalry"},
	},
	models.SportNBA: {
		{"Los Angeles Lakers", "Boston Celtics", "Historic NBA Rivalry"},
		{"Los Angeles Lakers", "Los Angeles Clippers", "LA Battle"},
		{"Golden State Warriors", "Cleveland Cavaliers", "Finals Rivalry"},
		{"Miami Heat", "Boston Celtics", "Eastern Rivalry"},
	},
}

// CheckRivalry looks up the team pair in either order. A team matches a
// stored name when either string contains the other.
func CheckRivalry(teamA, teamB string, sport models.Sport) models.RivalryInfo {
	if teamA == "" || teamB == "" {
		return models.RivalryInfo{}
	}
	for _, r := range knownRivalries[sport] {
		if (matches(teamA, r.TeamA) && matches(teamB, r.TeamB)) ||
			(matches(teamA, r.TeamB) && matches(teamB, r.TeamA)) {
			return models.RivalryInfo{IsRivalry: true, Name: r.Name, Intensity: RivalryIntensity}
		}
	}
	return models.RivalryInfo{}
}

func matches(team, stored string) bool {
	return strings.Contains(stored, team) || strings.Contains(team, stored)
}
