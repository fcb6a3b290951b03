// Package multi assembles recommended legs into a single parlay.
package multi

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/models"
)

const (
	// LowOddsCutoff separates preferred short-priced legs from the rest
	LowOddsCutoff = 1.6
	minLegs       = 2
)

var (
	upperBand = decimal.NewFromFloat(1.5)
	lowerBand = decimal.NewFromFloat(0.85)
)

// Config holds builder defaults
type Config struct {
	TargetOdds float64
	MaxLegs    int
	Stake      float64
}

// DefaultConfig returns the standard builder settings
func DefaultConfig() Config {
	return Config{TargetOdds: 2.0, MaxLegs: 4, Stake: 10}
}

// Builder greedily combines legs toward a target price
type Builder struct {
	cfg    Config
	logger *logger.PipelineLogger
}

// NewBuilder creates a new builder
func NewBuilder(cfg Config, log *logrus.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		logger: logger.NewPipelineLogger(log),
	}
}

// Config returns the builder defaults
func (b *Builder) Config() Config {
	return b.cfg
}

// BuildDefault builds with the configured target and leg cap
func (b *Builder) BuildDefault(recs []models.RecommendedLeg) models.Parlay {
	return b.Build(recs, b.cfg.TargetOdds, b.cfg.MaxLegs)
}

// Build selects at most maxLegs legs, one per event, aiming for combined odds
// in [0.85, 1.5] x target. When fewer than two legs fit the band it tops up
// from the remaining events regardless of price.
func (b *Builder) Build(recs []models.RecommendedLeg, targetOdds float64, maxLegs int) models.Parlay {
	if maxLegs < 0 {
		maxLegs = 0
	}

	ordered := make([]models.RecommendedLeg, 0, len(recs))
	for _, r := range recs {
		if r.DecimalOdds <= LowOddsCutoff {
			ordered = append(ordered, r)
		}
	}
	for _, r := range recs {
		if r.DecimalOdds > LowOddsCutoff {
			ordered = append(ordered, r)
		}
	}

	target := decimal.NewFromFloat(targetOdds)
	maxTarget := target.Mul(upperBand)
	minTarget := target.Mul(lowerBand)

	selected := make([]models.RecommendedLeg, 0, maxLegs)
	used := make(map[string]struct{})
	running := decimal.NewFromInt(1)

	for _, leg := range ordered {
		if len(selected) >= maxLegs {
			break
		}
		event := leg.EventKey()
		if _, ok := used[event]; ok {
			continue
		}
		next := running.Mul(decimal.NewFromFloat(leg.DecimalOdds))
		if next.GreaterThan(maxTarget) {
			continue
		}
		selected = append(selected, leg)
		used[event] = struct{}{}
		running = next
		if len(selected) >= minLegs && running.GreaterThanOrEqual(minTarget) {
			break
		}
	}

	if len(selected) < minLegs && len(selected) < maxLegs {
		for _, leg := range recs {
			event := leg.EventKey()
			if _, ok := used[event]; ok {
				continue
			}
			selected = append(selected, leg)
			used[event] = struct{}{}
			if len(selected) >= minLegs || len(selected) >= maxLegs {
				break
			}
		}
	}

	parlay := b.assemble(selected, targetOdds)
	b.logger.LogParlayBuilt(parlay.NumLegs, parlay.CombinedOdds, targetOdds, parlay.CombinedProbability)
	return parlay
}

func (b *Builder) assemble(legs []models.RecommendedLeg, targetOdds float64) models.Parlay {
	if len(legs) == 0 {
		return models.Parlay{
			Legs:         []models.RecommendedLeg{},
			CombinedOdds: 1.0,
			TargetOdds:   targetOdds,
			Stake:        b.cfg.Stake,
		}
	}

	prob := decimal.NewFromInt(1)
	for _, l := range legs {
		prob = prob.Mul(decimal.NewFromFloat(l.ModelProbability))
	}
	combined := CombinedOdds(legs)
	p, _ := prob.Round(4).Float64()

	return models.Parlay{
		Legs:                legs,
		CombinedOdds:        combined,
		CombinedProbability: p,
		NumLegs:             len(legs),
		TargetOdds:          targetOdds,
		Stake:               b.cfg.Stake,
		PotentialReturn:     Payout(b.cfg.Stake, combined),
	}
}

// CombinedOdds multiplies leg prices, rounded to 2 decimal places.
// No legs yields 1.0.
func CombinedOdds(legs []models.RecommendedLeg) float64 {
	product := decimal.NewFromInt(1)
	for _, l := range legs {
		product = product.Mul(decimal.NewFromFloat(l.DecimalOdds))
	}
	f, _ := product.Round(2).Float64()
	return f
}

// Payout returns stake x odds rounded to cents
func Payout(stake, odds float64) float64 {
	f, _ := decimal.NewFromFloat(stake).Mul(decimal.NewFromFloat(odds)).Round(2).Float64()
	return f
}
