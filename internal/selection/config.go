// Package selection narrows analyzed markets to a ranked, deduplicated
// recommendation list in two stages.
package selection

// Config holds the filter thresholds. Stage 1 thresholds are percentages,
// matching how they are configured.
type Config struct {
	MinOdds              float64
	MaxOdds              float64
	Stage1MinModelProb   float64
	Stage1MinEdge        float64
	Stage1MinEV          float64
	Stage1CandidateLimit int
	RivalryPenalty       float64
	ValueBetOppCeiling   float64
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		MinOdds:            1.05,
		MaxOdds:            1.25,
		Stage1MinModelProb: 75,
		Stage1MinEdge:      2,
		Stage1MinEV:        -5,
		RivalryPenalty:     8,
		ValueBetOppCeiling: 5,
	}
}
