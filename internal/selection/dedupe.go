package selection

import "github.com/yourusername/clever-multi/internal/models"

type selectionKey struct {
	event      string
	selection  string
	marketType models.MarketType
	line       string
}

func keyOf(q *models.MarketQuote) selectionKey {
	return selectionKey{
		event:      q.EventKey(),
		selection:  q.SelectionName,
		marketType: q.MarketType,
		line:       q.LineKey(),
	}
}

// Deduplicate keeps the first occurrence of each
// (event, selection, market type, line) key, preserving order
func Deduplicate(in []models.AnalyzedSelection) []models.AnalyzedSelection {
	seen := make(map[selectionKey]struct{}, len(in))
	out := make([]models.AnalyzedSelection, 0, len(in))
	for i := range in {
		k := keyOf(&in[i].MarketQuote)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, in[i])
	}
	return out
}
