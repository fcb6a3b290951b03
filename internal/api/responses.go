package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yourusername/clever-multi/internal/datasource"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/service"
)

// HealthResponse is the root endpoint payload
type HealthResponse struct {
	Status          string             `json:"status"`
	Service         string             `json:"service"`
	Version         string             `json:"version,omitempty"`
	SupportedSports []models.Sport     `json:"supported_sports"`
	Settings        map[string]float64 `json:"settings"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// ErrorResponse is returned by every failing endpoint
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type valueBetsResponse struct {
	Success     bool              `json:"success"`
	Count       int               `json:"count"`
	LastUpdated time.Time         `json:"last_updated"`
	ValueBets   []models.ValueBet `json:"value_bets"`
}

type recommendedLegsResponse struct {
	Success         bool                    `json:"success"`
	Count           int                     `json:"count"`
	TargetOddsRange string                  `json:"target_odds_range"`
	LastUpdated     time.Time               `json:"last_updated"`
	RecommendedLegs []models.RecommendedLeg `json:"recommended_legs"`
}

type weeklySummaryResponse struct {
	Success bool `json:"success"`
	service.WeeklySummary
	LastUpdated time.Time `json:"last_updated"`
}

type suggestedMultiResponse struct {
	Success        bool          `json:"success"`
	SuggestedMulti models.Parlay `json:"suggested_multi"`
}

type sportsResponse struct {
	Success bool           `json:"success"`
	Sports  []models.Sport `json:"sports"`
}

type settingsResponse struct {
	Success  bool           `json:"success"`
	Settings settingsDetail `json:"settings"`
}

type settingsDetail struct {
	MinEVThreshold         float64  `json:"min_ev_threshold"`
	MinConfidenceThreshold float64  `json:"min_confidence_threshold"`
	MinOddsFilter          float64  `json:"min_odds_filter"`
	MaxOddsFilter          float64  `json:"max_odds_filter"`
	Stage1MinModelProb     float64  `json:"stage1_min_model_prob"`
	Stage1MinEdge          float64  `json:"stage1_min_edge"`
	Stage1MinEV            float64  `json:"stage1_min_ev"`
	Stage1CandidateLimit   int      `json:"stage1_candidate_limit"`
	RecommendedLegsCount   int      `json:"recommended_legs_count"`
	TargetMultiOdds        float64  `json:"target_multi_odds"`
	MaxLegsInMulti         int      `json:"max_legs_in_multi"`
	Sports                 []string `json:"sports"`
}

type teamStatsResponse struct {
	Success bool              `json:"success"`
	Sport   models.Sport      `json:"sport"`
	Team    string            `json:"team"`
	Stats   models.TeamSignal `json:"stats"`
}

type predictionStats struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

type cacheStatsResponse struct {
	Success     bool                  `json:"success"`
	Cache       datasource.CacheStats `json:"cache"`
	TTLMinutes  float64               `json:"ttl_minutes"`
	Description string                `json:"description"`
	Predictions *predictionStats      `json:"predictions,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type fetchOddsResponse struct {
	Success   bool                               `json:"success"`
	Message   string                             `json:"message"`
	FetchTime time.Time                          `json:"fetch_time"`
	Sports    map[models.Sport]models.SportCount `json:"sports"`
}

type storedDataStatusResponse struct {
	Success bool `json:"success"`
	service.SnapshotStatus
	IsFetchDay bool   `json:"is_fetch_day"`
	FetchDays  string `json:"fetch_days"`
	Message    string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: err.Error()})
}
