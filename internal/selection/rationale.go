package selection

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/clever-multi/internal/models"
)

// Rationale renders the narrative summary for a selection. opp may be nil.
func Rationale(a *models.AnalyzedSelection, fav models.TeamSignal, opp *models.TeamSignal, rivalry models.RivalryInfo, rivalryPenalty float64) string {
	odds := a.DecimalOdds
	modelPct := pct(a.ModelProbability)
	impliedPct := pct(a.ImpliedProbability)

	parts := make([]string, 0, 7)
	parts = append(parts, fmt.Sprintf("MODEL ANALYSIS: %s (%s) @ $%.2f", a.SelectionName, a.Sport.Upper(), odds))
	parts = append(parts, fmt.Sprintf("Form: %d of last 10 wins, %+.1f point differential, %.0f%% consistency rating.",
		recordWins(fav.Last10Record), fav.PointDifferential, fav.ConsistencyScore*100))

	if opp != nil && opp.WinRate != 0 {
		parts = append(parts, fmt.Sprintf("Opponent form: %s last 10, %+.1f differential. Strength gap: %+.1f rating points.",
			opp.Last10Record, opp.PointDifferential, fav.StrengthRating-opp.StrengthRating))
	}

	parts = append(parts, fmt.Sprintf("Edge: Model %.1f%% vs market implied %.1f%% = %.1fpp edge. EV: %+.1f%%.",
		modelPct, impliedPct, modelPct-impliedPct, pct(a.ExpectedValue)))

	if rivalry.IsRivalry {
		parts = append(parts, fmt.Sprintf("RISK NOTE: %s - rivalry games historically closer. Factored into score with -%.1f penalty.",
			rivalry.Name, rivalryPenalty*rivalry.Intensity))
	}

	parts = append(parts, "Market view: "+marketView(odds))
	parts = append(parts, "Note: This is model-based analysis, not a guarantee. Always bet responsibly.")

	return strings.Join(parts, " ")
}

func marketView(odds float64) string {
	switch {
	case odds <= 1.10:
		return "Heavy favorite (implied >90% win probability)."
	case odds <= 1.15:
		return "Strong favorite (implied 85-90% win probability)."
	case odds <= 1.20:
		return "Clear favorite (implied 80-85% win probability)."
	default:
		return "Moderate favorite (implied 75-80% win probability)."
	}
}

// recordWins reads the wins from a "W-L" record, defaulting to 7
func recordWins(record string) int {
	w, _, ok := strings.Cut(record, "-")
	if !ok {
		return 7
	}
	n, err := strconv.Atoi(w)
	if err != nil {
		return 7
	}
	return n
}
