package ev

import (
	"context"
	"errors"
)

// ErrProbabilityOutOfRange is returned when a source yields a value outside [0,1]
var ErrProbabilityOutOfRange = errors.New("probability out of range")

// ProbabilitySource estimates the win probability for a feature vector
type ProbabilitySource interface {
	Name() string
	Probability(ctx context.Context, features FeatureVector) (float64, error)
}

// HeuristicSourceName is reported for heuristic estimates
const HeuristicSourceName = "heuristic"

// HeuristicSource is the deterministic fallback estimator. It never fails.
type HeuristicSource struct{}

// Name returns the source name
func (HeuristicSource) Name() string { return HeuristicSourceName }

// Probability applies the price-tiered heuristic to the feature vector
func (HeuristicSource) Probability(_ context.Context, f FeatureVector) (float64, error) {
	return heuristic(f[FeatureImplied], f[FeatureWinRate], f[FeatureRecentForm], f[FeatureIsHome] == 1), nil
}

// HeuristicProbability applies the heuristic to a context; nil uses defaults
func HeuristicProbability(implied float64, sc *SelectionContext) float64 {
	if sc == nil {
		sc = DefaultContext(implied)
	}
	return heuristic(implied, sc.WinRate, sc.RecentForm, sc.IsHome)
}

func heuristic(implied, winRate, recentForm float64, isHome bool) float64 {
	var adj float64
	switch {
	case implied >= 0.85:
		switch {
		case winRate >= 0.65:
			adj = 0.05
		case winRate >= 0.55:
			adj = 0.03
		default:
			adj = 0.01
		}
	case implied >= 0.75:
		if winRate >= 0.60 {
			adj = 0.04
		} else {
			adj = 0.02
		}
	case implied >= 0.60:
		adj = 0.03
	default:
		adj = 0.02
	}

	if isHome {
		adj += 0.02
	}
	if recentForm > 0.6 {
		adj += 0.02
	}

	return clamp(Round(implied+adj, 4), 0.02, 0.98)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
