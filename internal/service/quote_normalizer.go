package service

import (
	"strings"

	"github.com/yourusername/clever-multi/internal/models"
)

// NormalizeQuote canonicalizes provider formatting: trimmed names, lowercase
// sport and side, market keys mapped to market types
func NormalizeQuote(q models.MarketQuote) models.MarketQuote {
	q.EventID = strings.TrimSpace(q.EventID)
	q.Sport = models.Sport(strings.ToLower(strings.TrimSpace(string(q.Sport))))
	q.HomeTeam = sanitizeName(q.HomeTeam)
	q.AwayTeam = sanitizeName(q.AwayTeam)
	q.SelectionName = sanitizeName(q.SelectionName)
	q.PropPlayer = sanitizeName(q.PropPlayer)
	q.Bookmaker = strings.TrimSpace(q.Bookmaker)
	q.Side = strings.ToLower(strings.TrimSpace(q.Side))
	q.MarketType = models.MarketTypeFromAPIKey(strings.TrimSpace(string(q.MarketType)))
	if !q.CommenceTime.IsZero() {
		q.CommenceTime = q.CommenceTime.UTC()
	}
	return q
}

// sanitizeName trims and collapses internal whitespace
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
