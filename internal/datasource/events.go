package datasource

import (
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/clever-multi/internal/models"
)

// ConfirmedEventStatuses are the provider statuses treated as a confirmed fixture
var ConfirmedEventStatuses = []string{"scheduled", "pre_match", "open"}

// PlaceholderTeamNames mark fixtures whose participants are not yet known
var PlaceholderTeamNames = []string{"tba", "to be announced", "tbd", "to be determined"}

// apiEvent is one fixture as returned by the odds and events endpoints
type apiEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	CommenceTime string         `json:"commence_time"`
	Status       string         `json:"status,omitempty"`
	EventStatus  string         `json:"event_status,omitempty"`
	Bookmakers   []apiBookmaker `json:"bookmakers,omitempty"`
}

type apiBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []apiMarket `json:"markets"`
}

type apiMarket struct {
	Key      string       `json:"key"`
	Outcomes []apiOutcome `json:"outcomes"`
}

type apiOutcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}

func (e *apiEvent) status() string {
	if e.Status != "" {
		return strings.ToLower(e.Status)
	}
	return strings.ToLower(e.EventStatus)
}

// isConfirmedEvent reports whether the fixture is real, upcoming and within
// the look-ahead window
func isConfirmedEvent(e *apiEvent, now time.Time, maxDaysAhead int) bool {
	if st := e.status(); st != "" {
		known := false
		for _, s := range ConfirmedEventStatuses {
			if st == s {
				known = true
				break
			}
		}
		if !known {
			return false
		}
	}

	if e.CommenceTime == "" {
		return false
	}
	start, err := time.Parse(time.RFC3339, e.CommenceTime)
	if err != nil {
		return false
	}
	if start.Before(now) || start.After(now.AddDate(0, 0, maxDaysAhead)) {
		return false
	}

	home := strings.ToLower(e.HomeTeam)
	away := strings.ToLower(e.AwayTeam)
	for _, placeholder := range PlaceholderTeamNames {
		if strings.Contains(home, placeholder) || strings.Contains(away, placeholder) {
			return false
		}
	}

	return home != "" && away != "" && home != away
}

func confirmedEvents(events []apiEvent, now time.Time, maxDaysAhead int) []apiEvent {
	out := make([]apiEvent, 0, len(events))
	for i := range events {
		if isConfirmedEvent(&events[i], now, maxDaysAhead) {
			out = append(out, events[i])
		}
	}
	return out
}

// parseOddsResponse flattens featured-market events into quotes
func parseOddsResponse(events []apiEvent, sport models.Sport) []models.MarketQuote {
	var quotes []models.MarketQuote
	for i := range events {
		e := &events[i]
		commence, _ := time.Parse(time.RFC3339, e.CommenceTime)
		for _, bm := range e.Bookmakers {
			for _, m := range bm.Markets {
				mt := models.MarketTypeFromAPIKey(m.Key)
				if !sport.Allows(mt) {
					continue
				}
				for _, o := range m.Outcomes {
					if o.Price <= 0 {
						continue
					}
					quotes = append(quotes, models.MarketQuote{
						EventID:       e.ID,
						Sport:         sport,
						HomeTeam:      e.HomeTeam,
						AwayTeam:      e.AwayTeam,
						CommenceTime:  commence,
						MarketType:    mt,
						SelectionName: o.Name,
						DecimalOdds:   o.Price,
						Line:          o.Point,
						Bookmaker:     bm.Key,
					})
				}
			}
		}
	}
	return quotes
}

// parsePropsResponse flattens one event's player-prop markets into quotes.
// Fixture fields missing from the odds payload fall back to the listing.
func parsePropsResponse(data, listing *apiEvent, sport models.Sport) []models.MarketQuote {
	eventID := firstNonEmpty(data.ID, listing.ID)
	home := firstNonEmpty(data.HomeTeam, listing.HomeTeam)
	away := firstNonEmpty(data.AwayTeam, listing.AwayTeam)
	commence, _ := time.Parse(time.RFC3339, firstNonEmpty(data.CommenceTime, listing.CommenceTime))

	var quotes []models.MarketQuote
	for _, bm := range data.Bookmakers {
		for _, m := range bm.Markets {
			mt := models.MarketTypeFromAPIKey(m.Key)
			if !sport.Allows(mt) {
				continue
			}
			for _, o := range m.Outcomes {
				if o.Price <= 0 {
					continue
				}
				side := strings.ToLower(o.Name)
				q := models.MarketQuote{
					EventID:       eventID,
					Sport:         sport,
					HomeTeam:      home,
					AwayTeam:      away,
					CommenceTime:  commence,
					MarketType:    mt,
					SelectionName: propSelectionName(m.Key, o.Description, side, o.Point),
					DecimalOdds:   o.Price,
					Line:          o.Point,
					Bookmaker:     bm.Key,
					IsProp:        true,
					PropPlayer:    o.Description,
				}
				if side == models.SideOver || side == models.SideUnder {
					q.Side = side
				}
				quotes = append(quotes, q)
			}
		}
	}
	return quotes
}

// propSelectionName renders "<player> <side> <line> <prop>" for over/under
// outcomes, "<player> <side>" for yes/no style outcomes
func propSelectionName(marketKey, player, side string, point *float64) string {
	if point != nil && (side == models.SideOver || side == models.SideUnder) {
		prop := strings.ReplaceAll(strings.ReplaceAll(marketKey, "player_", ""), "fighter_", "")
		return player + " " + side + " " + strconv.FormatFloat(*point, 'f', -1, 64) + " " + prop
	}
	if player != "" {
		if side != "" {
			return player + " " + side
		}
		return player
	}
	return side
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// BestOddsPerSelection keeps the highest-priced quote for each
// (event, market, selection, line) across bookmakers, in first-seen order
func BestOddsPerSelection(quotes []models.MarketQuote) []models.MarketQuote {
	type key struct {
		event     string
		market    models.MarketType
		selection string
		line      string
	}
	index := make(map[key]int, len(quotes))
	best := make([]models.MarketQuote, 0, len(quotes))

	for _, q := range quotes {
		k := key{q.EventKey(), q.MarketType, q.SelectionName, q.LineKey()}
		if i, ok := index[k]; ok {
			if q.DecimalOdds > best[i].DecimalOdds {
				best[i] = q
			}
			continue
		}
		index[k] = len(best)
		best = append(best, q)
	}
	return best
}

// FilterUpcoming keeps quotes whose fixture starts after now and within the window
func FilterUpcoming(quotes []models.MarketQuote, now time.Time, maxDaysAhead int) []models.MarketQuote {
	limit := now.AddDate(0, 0, maxDaysAhead)
	out := make([]models.MarketQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.CommenceTime.After(now) && !q.CommenceTime.After(limit) {
			out = append(out, q)
		}
	}
	return out
}
