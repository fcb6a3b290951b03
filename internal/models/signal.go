package models

// TeamSignal holds team-strength indicators used by the deep prune
type TeamSignal struct {
	TeamName          string  `db:"team_name" json:"team_name"`
	Sport             Sport   `db:"sport" json:"sport"`
	WinRate           float64 `db:"win_rate" json:"win_rate"`
	Last10Record      string  `db:"last_10_record" json:"last_10_record"`
	Last5Record       string  `db:"last_5_record" json:"last_5_record"`
	PointDifferential float64 `db:"point_differential" json:"point_differential"`
	ConsistencyScore  float64 `db:"consistency_score" json:"consistency_score"`
	StrengthRating    float64 `db:"strength_rating" json:"strength_rating"`
	CurrentStreak     int     `db:"current_streak" json:"current_streak"`
}

// RivalryInfo is the result of a rivalry lookup for a team pair
type RivalryInfo struct {
	IsRivalry bool    `json:"is_rivalry"`
	Name      string  `json:"name,omitempty"`
	Intensity float64 `json:"intensity"`
}
