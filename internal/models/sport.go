package models

import (
	"fmt"
	"strings"
)

// Sport is the lowercase sport key carried on every quote
type Sport string

const (
	SportNBA Sport = "nba"
	SportNFL Sport = "nfl"
)

// SportProfile describes how a sport is fetched and which markets it allows
type SportProfile struct {
	Sport          Sport
	OddsAPIKey     string
	PropsMarkets   []string
	AllowedMarkets []MarketType
}

var sportProfiles = map[Sport]SportProfile{
	SportNBA: {
		Sport:      SportNBA,
		OddsAPIKey: "basketball_nba",
		PropsMarkets: []string{
			"player_points", "player_rebounds", "player_assists",
			"player_points_rebounds_assists", "player_threes", "player_blocks",
			"player_steals", "player_double_double",
		},
		AllowedMarkets: []MarketType{
			MarketTypeMoneyline,
			MarketTypePlayerPoints,
			MarketTypePlayerAssists,
			MarketTypePlayerRebounds,
			MarketTypePlayerThrees,
			MarketTypePlayerBlocks,
			MarketTypePlayerSteals,
			MarketTypePlayerPRA,
			MarketTypePlayerDoubleDouble,
			MarketTypeAltPlayerPoints,
			MarketTypeAltPlayerRebounds,
			MarketTypeAltPlayerAssists,
			MarketTypeAltPlayerThrees,
		},
	},
	SportNFL: {
		Sport:      SportNFL,
		OddsAPIKey: "americanfootball_nfl",
		PropsMarkets: []string{
			"player_pass_tds", "player_pass_yds", "player_rush_yds",
			"player_reception_yds", "player_receptions", "player_anytime_td",
			"player_pass_completions", "player_pass_attempts",
			"player_rush_attempts", "player_first_td",
		},
		AllowedMarkets: []MarketType{
			MarketTypeMoneyline,
			MarketTypeSpread,
			MarketTypeTotals,
			MarketTypePassTDs,
			MarketTypePassYards,
			MarketTypeRushYards,
			MarketTypeReceivingYards,
			MarketTypeReceptions,
			MarketTypeAnytimeTD,
			MarketTypePassCompletions,
			MarketTypePassAttempts,
			MarketTypeRushAttempts,
			MarketTypeFirstTD,
			MarketTypeAltPassYards,
			MarketTypeAltRushYards,
			MarketTypeAltReceivingYards,
		},
	},
}

// ParseSport normalizes a sport key and checks it against the registry
func ParseSport(raw string) (Sport, error) {
	s := Sport(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := sportProfiles[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSport, raw)
	}
	return s, nil
}

// SupportedSports returns the registered sports in a stable order
func SupportedSports() []Sport {
	return []Sport{SportNBA, SportNFL}
}

// Profile returns the registry entry for the sport
func (s Sport) Profile() (SportProfile, bool) {
	p, ok := sportProfiles[s]
	return p, ok
}

// Allows reports whether the market type may be offered for this sport
func (s Sport) Allows(mt MarketType) bool {
	p, ok := sportProfiles[s]
	if !ok || len(p.AllowedMarkets) == 0 {
		return true
	}
	for _, allowed := range p.AllowedMarkets {
		if allowed == mt {
			return true
		}
	}
	return false
}

// Upper returns the display form used in rationale text
func (s Sport) Upper() string {
	return strings.ToUpper(string(s))
}
