package ev

import (
	"math"

	"github.com/yourusername/clever-multi/internal/models"
)

// Round rounds x to the given number of decimal places
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// ImpliedProbability returns the market probability for decimal odds, or 0
// for non-positive odds
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return Round(1/odds, 4)
}

// ExpectedValue returns the expected return per unit stake
func ExpectedValue(modelProb, odds float64) float64 {
	return Round(modelProb*odds-1, 4)
}

// Edge returns the model probability minus the implied probability
func Edge(modelProb, impliedProb float64) float64 {
	return Round(modelProb-impliedProb, 4)
}

// ClassifyConfidence buckets a selection; the first matching tier wins
func ClassifyConfidence(modelProb, ev float64) models.Confidence {
	switch {
	case modelProb >= 0.85 && ev >= 0.05:
		return models.ConfidenceHigh
	case modelProb >= 0.75 && ev >= 0.02:
		return models.ConfidenceMedium
	case modelProb >= 0.65 && ev >= 0.01:
		return models.ConfidenceLow
	default:
		return models.ConfidenceNone
	}
}

// ValueRating maps expected value onto a 1..5 scale
func ValueRating(ev float64) int {
	switch {
	case ev >= 0.10:
		return 5
	case ev >= 0.06:
		return 4
	case ev >= 0.04:
		return 3
	case ev >= 0.02:
		return 2
	default:
		return 1
	}
}
