package ev

import "github.com/yourusername/clever-multi/internal/models"

// SelectionContext carries the contextual signals for one selection.
// A nil context means none were supplied.
type SelectionContext struct {
	WinRate     float64 `json:"win_rate"`
	RecentForm  float64 `json:"recent_form"`
	IsFavorite  bool    `json:"is_favorite"`
	IsHome      bool    `json:"is_home"`
	RankingDiff float64 `json:"ranking_diff"`
}

// FeatureVector is the fixed model input:
// win_rate, recent_form, is_favorite, is_home, ranking_diff/100, implied_prob
type FeatureVector [6]float64

// Feature indexes
const (
	FeatureWinRate = iota
	FeatureRecentForm
	FeatureIsFavorite
	FeatureIsHome
	FeatureRankingDiff
	FeatureImplied
)

// Features builds the model input for this context
func (c *SelectionContext) Features(implied float64) FeatureVector {
	return FeatureVector{
		c.WinRate,
		c.RecentForm,
		boolToFloat(c.IsFavorite),
		boolToFloat(c.IsHome),
		c.RankingDiff / 100,
		implied,
	}
}

// DefaultContext fills in the signals assumed when none are supplied
func DefaultContext(implied float64) *SelectionContext {
	fav := implied > 0.5
	form := 0.45
	if fav {
		form = 0.55
	}
	return &SelectionContext{
		WinRate:    form,
		RecentForm: form,
		IsFavorite: fav,
	}
}

// ContextFromQuote derives a context from the quote's own price and teams
func ContextFromQuote(q *models.MarketQuote) *SelectionContext {
	odds := q.DecimalOdds
	fav := odds < 2.0

	var form float64
	switch {
	case odds <= 1.15:
		form = 0.75
	case odds <= 1.25:
		form = 0.68
	case odds <= 1.50:
		form = 0.60
	case fav:
		form = 0.55
	default:
		form = 0.42
	}

	rankingDiff := 10.0
	if odds < 1.5 {
		rankingDiff = -20
	} else if fav {
		rankingDiff = -10
	}

	return &SelectionContext{
		WinRate:     form,
		RecentForm:  form,
		IsFavorite:  fav,
		IsHome:      q.IsHomeSelection(),
		RankingDiff: rankingDiff,
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
