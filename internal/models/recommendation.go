package models

import (
	"time"

	"github.com/google/uuid"
)

// StatsSummary is the presentation subset of a TeamSignal
type StatsSummary struct {
	WinRate     float64  `json:"win_rate"`
	Last10      string   `json:"last_10"`
	PointDiff   float64  `json:"point_diff"`
	Consistency *float64 `json:"consistency,omitempty"`
}

// RecommendedLeg is an analyzed selection enriched by the deep prune
type RecommendedLeg struct {
	AnalyzedSelection
	CompositeScore float64       `json:"composite_score"`
	Rationale      string        `json:"rationale"`
	RivalryFlag    bool          `json:"rivalry_flag"`
	RivalryName    string        `json:"rivalry_name,omitempty"`
	FavoriteStats  StatsSummary  `json:"favorite_stats"`
	OpponentStats  *StatsSummary `json:"opponent_stats"`
}

// Parlay is a multi-leg combination with at most one leg per event
type Parlay struct {
	Legs                []RecommendedLeg `json:"legs"`
	CombinedOdds        float64          `json:"combined_odds"`
	CombinedProbability float64          `json:"combined_probability"`
	NumLegs             int              `json:"num_legs"`
	TargetOdds          float64          `json:"target_odds"`
	Stake               float64          `json:"stake"`
	PotentialReturn     float64          `json:"potential_return"`
}

// PipelineRun records the outputs of a single pipeline invocation
type PipelineRun struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	SnapshotID      *uuid.UUID       `db:"snapshot_id" json:"snapshot_id,omitempty"`
	QuotesReceived  int              `db:"quotes_received" json:"quotes_received"`
	QuotesSkipped   int              `db:"quotes_skipped" json:"quotes_skipped"`
	Stage1Count     int              `db:"stage1_count" json:"stage1_count"`
	Recommendations []RecommendedLeg `json:"recommendations"`
	Parlay          Parlay           `json:"parlay"`
	StartedAt       time.Time        `db:"started_at" json:"started_at"`
	CompletedAt     time.Time        `db:"completed_at" json:"completed_at"`
}

// Snapshot is a persisted batch of quotes from one fetch
type Snapshot struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	FetchedAt time.Time     `db:"fetched_at" json:"fetch_time"`
	Quotes    []MarketQuote `json:"quotes"`
}

// CountBySport returns the number of quotes per sport, split h2h vs props
func (s *Snapshot) CountBySport() map[Sport]SportCount {
	counts := make(map[Sport]SportCount)
	for _, q := range s.Quotes {
		c := counts[q.Sport]
		if q.IsProp {
			c.Props++
		} else {
			c.H2H++
		}
		counts[q.Sport] = c
	}
	return counts
}

// SportCount is a per-sport quote tally
type SportCount struct {
	H2H   int `json:"h2h"`
	Props int `json:"props"`
}

// ValueBet is an analyzed selection with positive expected value and a rationale
type ValueBet struct {
	AnalyzedSelection
	Rationale string `json:"rationale"`
}
