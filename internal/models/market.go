package models

// MarketType is the normalized market identifier
type MarketType string

const (
	MarketTypeMoneyline          MarketType = "moneyline"
	MarketTypeMoneylineLay       MarketType = "moneyline_lay"
	MarketTypeSpread             MarketType = "spread"
	MarketTypeTotals             MarketType = "totals"
	MarketTypePlayerPoints       MarketType = "player_points_over_under"
	MarketTypePlayerRebounds     MarketType = "player_rebounds_over_under"
	MarketTypePlayerAssists      MarketType = "player_assists_over_under"
	MarketTypePlayerPRA          MarketType = "player_pra_over_under"
	MarketTypePlayerThrees       MarketType = "player_threes_over_under"
	MarketTypePlayerBlocks       MarketType = "player_blocks_over_under"
	MarketTypePlayerSteals       MarketType = "player_steals_over_under"
	MarketTypePlayerDoubleDouble MarketType = "player_double_double"
	MarketTypePassTDs            MarketType = "player_pass_tds_over_under"
	MarketTypePassYards          MarketType = "player_pass_yards_over_under"
	MarketTypeRushYards          MarketType = "player_rush_yards_over_under"
	MarketTypeReceivingYards     MarketType = "player_receiving_yards_over_under"
	MarketTypeReceptions         MarketType = "player_receptions_over_under"
	MarketTypeAnytimeTD          MarketType = "player_anytime_touchdown"
	MarketTypePassCompletions    MarketType = "player_pass_completions_over_under"
	MarketTypePassAttempts       MarketType = "player_pass_attempts_over_under"
	MarketTypeRushAttempts       MarketType = "player_rush_attempts_over_under"
	MarketTypeFirstTD            MarketType = "player_first_touchdown"
	MarketTypeAltPlayerPoints    MarketType = "alternate_player_points"
	MarketTypeAltPlayerRebounds  MarketType = "alternate_player_rebounds"
	MarketTypeAltPlayerAssists   MarketType = "alternate_player_assists"
	MarketTypeAltPlayerThrees    MarketType = "alternate_player_threes"
	MarketTypeAltPassYards       MarketType = "alternate_player_pass_yards"
	MarketTypeAltRushYards       MarketType = "alternate_player_rush_yards"
	MarketTypeAltReceivingYards  MarketType = "alternate_player_receiving_yards"
)

// Side values for over/under props
const (
	SideOver  = "over"
	SideUnder = "under"
)

var apiMarketKeys = map[string]MarketType{
	"h2h":                            MarketTypeMoneyline,
	"h2h_lay":                        MarketTypeMoneylineLay,
	"spreads":                        MarketTypeSpread,
	"totals":                         MarketTypeTotals,
	"player_points":                  MarketTypePlayerPoints,
	"player_rebounds":                MarketTypePlayerRebounds,
	"player_assists":                 MarketTypePlayerAssists,
	"player_points_rebounds_assists": MarketTypePlayerPRA,
	"player_threes":                  MarketTypePlayerThrees,
	"player_blocks":                  MarketTypePlayerBlocks,
	"player_steals":                  MarketTypePlayerSteals,
	"player_double_double":           MarketTypePlayerDoubleDouble,
	"player_pass_tds":                MarketTypePassTDs,
	"player_pass_yds":                MarketTypePassYards,
	"player_rush_yds":                MarketTypeRushYards,
	"player_reception_yds":           MarketTypeReceivingYards,
	"player_receptions":              MarketTypeReceptions,
	"player_anytime_td":              MarketTypeAnytimeTD,
	"player_pass_completions":        MarketTypePassCompletions,
	"player_pass_attempts":           MarketTypePassAttempts,
	"player_rush_attempts":           MarketTypeRushAttempts,
	"player_first_td":                MarketTypeFirstTD,
	"alternate_player_points":        MarketTypeAltPlayerPoints,
	"alternate_player_rebounds":      MarketTypeAltPlayerRebounds,
	"alternate_player_assists":       MarketTypeAltPlayerAssists,
	"alternate_player_threes":        MarketTypeAltPlayerThrees,
	"alternate_player_pass_yds":      MarketTypeAltPassYards,
	"alternate_player_rush_yds":      MarketTypeAltRushYards,
	"alternate_player_reception_yds": MarketTypeAltReceivingYards,
}

// MarketTypeFromAPIKey maps a provider market key to its normalized type.
// Unknown keys pass through unchanged.
func MarketTypeFromAPIKey(key string) MarketType {
	if mt, ok := apiMarketKeys[key]; ok {
		return mt
	}
	return MarketType(key)
}
