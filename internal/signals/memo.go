package signals

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/clever-multi/internal/models"
)

// Memo caches derived team signals keyed by (sport, team, reference odds).
// Create one per pipeline run; a zero TTL keeps entries for the memo's life.
type Memo struct {
	cache *cache.Cache
}

// NewMemo creates a new memo
func NewMemo(ttl time.Duration) *Memo {
	if ttl <= 0 {
		return &Memo{cache: cache.New(cache.NoExpiration, 0)}
	}
	return &Memo{cache: cache.New(ttl, ttl*2)}
}

func memoKey(sport models.Sport, team string, odds float64) string {
	return string(sport) + "_" + team + "_" + strconv.FormatFloat(odds, 'f', -1, 64)
}

// Get returns a memoized signal
func (m *Memo) Get(sport models.Sport, team string, odds float64) (models.TeamSignal, bool) {
	v, ok := m.cache.Get(memoKey(sport, team, odds))
	if !ok {
		return models.TeamSignal{}, false
	}
	sig, ok := v.(models.TeamSignal)
	return sig, ok
}

// Set stores a signal
func (m *Memo) Set(sport models.Sport, team string, odds float64, sig models.TeamSignal) {
	m.cache.SetDefault(memoKey(sport, team, odds), sig)
}

// ItemCount returns the number of memoized signals
func (m *Memo) ItemCount() int {
	return m.cache.ItemCount()
}
