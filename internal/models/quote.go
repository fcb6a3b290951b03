package models

import (
	"strconv"
	"time"
)

// MarketQuote is a single priced selection produced by the odds collaborator
type MarketQuote struct {
	EventID       string     `db:"event_id" json:"event_id" validate:"required"`
	Sport         Sport      `db:"sport" json:"sport" validate:"required"`
	HomeTeam      string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam      string     `db:"away_team" json:"away_team" validate:"required"`
	CommenceTime  time.Time  `db:"commence_time" json:"commence_time" validate:"required"`
	MarketType    MarketType `db:"market_type" json:"market_type" validate:"required"`
	SelectionName string     `db:"selection_name" json:"selection_name" validate:"required"`
	DecimalOdds   float64    `db:"decimal_odds" json:"decimal_odds" validate:"gt=1"`
	Line          *float64   `db:"line" json:"line"`
	Side          string     `db:"side" json:"side,omitempty" validate:"omitempty,oneof=over under"`
	Bookmaker     string     `db:"bookmaker" json:"bookmaker" validate:"required"`
	IsProp        bool       `db:"is_prop" json:"is_prop"`
	PropPlayer    string     `db:"prop_player" json:"prop_player,omitempty"`
}

// Event returns the display name of the fixture
func (q *MarketQuote) Event() string {
	return q.HomeTeam + " vs " + q.AwayTeam
}

// EventKey identifies the fixture, falling back to the team pair when the
// provider did not supply an event ID
func (q *MarketQuote) EventKey() string {
	if q.EventID != "" {
		return q.EventID
	}
	return q.HomeTeam + "_vs_" + q.AwayTeam
}

// LineKey renders the line for use in dedup keys; absent lines render empty
func (q *MarketQuote) LineKey() string {
	if q.Line == nil {
		return ""
	}
	return strconv.FormatFloat(*q.Line, 'f', -1, 64)
}

// Opponent returns the other side of the fixture relative to the selection
func (q *MarketQuote) Opponent() string {
	if q.SelectionName == q.HomeTeam {
		return q.AwayTeam
	}
	return q.HomeTeam
}

// IsHomeSelection reports whether the selection is the home team
func (q *MarketQuote) IsHomeSelection() bool {
	return q.HomeTeam == q.SelectionName
}
