package signals

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/models"
)

// StatsProvider supplies team indicators. ok is false when the provider has
// nothing for the team.
type StatsProvider interface {
	Name() string
	Lookup(sport models.Sport, team string, referenceOdds float64, isFavorite bool) (sig models.TeamSignal, ok bool)
}

// SyntheticProvider derives indicators from price alone and always answers
type SyntheticProvider struct{}

// Name returns the provider name
func (SyntheticProvider) Name() string { return "synthetic" }

// Lookup derives the signal from the reference odds
func (SyntheticProvider) Lookup(sport models.Sport, team string, odds float64, isFavorite bool) (models.TeamSignal, bool) {
	return DeriveFromOdds(team, sport, odds, isFavorite), true
}

// StaticProvider serves pre-loaded statistics, typically read from the
// team_stats table before a run
type StaticProvider struct {
	stats map[string]models.TeamSignal
}

// NewStaticProvider indexes the given signals by sport and team name
func NewStaticProvider(signals []models.TeamSignal) *StaticProvider {
	idx := make(map[string]models.TeamSignal, len(signals))
	for _, s := range signals {
		idx[staticKey(s.Sport, s.TeamName)] = s
	}
	return &StaticProvider{stats: idx}
}

func staticKey(sport models.Sport, team string) string {
	return string(sport) + "|" + strings.ToLower(team)
}

// Name returns the provider name
func (p *StaticProvider) Name() string { return "static" }

// Lookup returns stored statistics for the team, ignoring the price
func (p *StaticProvider) Lookup(sport models.Sport, team string, _ float64, _ bool) (models.TeamSignal, bool) {
	s, ok := p.stats[staticKey(sport, team)]
	return s, ok
}

// Len returns the number of indexed teams
func (p *StaticProvider) Len() int {
	return len(p.stats)
}

// Deriver resolves team signals through a ranked provider chain
type Deriver struct {
	providers []StatsProvider
	memo      *Memo
	logger    *logrus.Entry
}

// NewDeriver creates a new deriver. The synthetic provider is always last.
func NewDeriver(memo *Memo, logger *logrus.Logger, providers ...StatsProvider) *Deriver {
	chain := make([]StatsProvider, 0, len(providers)+1)
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	chain = append(chain, SyntheticProvider{})
	if memo == nil {
		memo = NewMemo(0)
	}
	return &Deriver{
		providers: chain,
		memo:      memo,
		logger:    logger.WithField("component", "signals"),
	}
}

// WithMemo returns a deriver sharing this provider chain with a fresh memo
func (d *Deriver) WithMemo(memo *Memo) *Deriver {
	return &Deriver{providers: d.providers, memo: memo, logger: d.logger}
}

// Memo returns the deriver's memo
func (d *Deriver) Memo() *Memo {
	return d.memo
}

// Derive returns the signal for the team at the given reference odds
func (d *Deriver) Derive(team string, sport models.Sport, odds float64, isFavorite bool) models.TeamSignal {
	if sig, ok := d.memo.Get(sport, team, odds); ok {
		return sig
	}

	var sig models.TeamSignal
	for _, p := range d.providers {
		s, ok := p.Lookup(sport, team, odds, isFavorite)
		if !ok {
			continue
		}
		sig = s
		if p.Name() != "synthetic" {
			d.logger.WithFields(logrus.Fields{
				"team":     team,
				"provider": p.Name(),
			}).Debug("Team signal resolved")
		}
		break
	}
	sig.TeamName = team
	sig.Sport = sport

	d.memo.Set(sport, team, odds, sig)
	return sig
}
