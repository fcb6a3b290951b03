package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yourusername/clever-multi/internal/datasource"
	"github.com/yourusername/clever-multi/internal/models"
	"github.com/yourusername/clever-multi/internal/scheduler"
	"github.com/yourusername/clever-multi/internal/selection"
	"github.com/yourusername/clever-multi/internal/service"
)

// referenceTeamOdds is the price assumed for a team looked up without a market
const referenceTeamOdds = 1.15

const cacheDescription = "Cache reduces API calls. Data refreshes when the TTL expires."

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	sel := s.cfg.App.Selection
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:          "healthy",
		Service:         s.cfg.ServiceName,
		Version:         s.cfg.Version,
		SupportedSports: models.SupportedSports(),
		Settings: map[string]float64{
			"min_odds_filter": sel.MinOddsFilter,
			"max_odds_filter": sel.MaxOddsFilter,
		},
	})
}

func (s *Server) handleValueBets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var sport models.Sport
	if raw := q.Get("sport"); raw != "" {
		parsed, err := models.ParseSport(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sport = parsed
	}
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.cfg.Analyzer.Latest(r.Context(), "api")
	if err != nil {
		s.failed(w, r, err)
		return
	}

	bets := result.ValueBets
	if sport != "" {
		bets = selection.BySport(bets, sport)
	}
	if q.Get("high_confidence") == "true" {
		bets = selection.HighConfidence(bets)
	}
	if limit > 0 {
		bets = selection.Top(bets, limit)
	}
	if bets == nil {
		bets = []models.ValueBet{}
	}

	writeJSON(w, http.StatusOK, valueBetsResponse{
		Success:     true,
		Count:       len(bets),
		LastUpdated: result.Run.CompletedAt,
		ValueBets:   bets,
	})
}

func (s *Server) handleRecommendedLegs(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.cfg.Analyzer.Latest(r.Context(), "api")
	if err != nil {
		s.failed(w, r, err)
		return
	}

	legs := s.cfg.Analyzer.Pipeline().Legs(result, limit)
	if legs == nil {
		legs = []models.RecommendedLeg{}
	}

	sel := s.cfg.App.Selection
	writeJSON(w, http.StatusOK, recommendedLegsResponse{
		Success:         true,
		Count:           len(legs),
		TargetOddsRange: fmt.Sprintf("%.2f - %.2f", sel.MinOddsFilter, sel.MaxOddsFilter),
		LastUpdated:     result.Run.CompletedAt,
		RecommendedLegs: legs,
	})
}

func (s *Server) handleWeeklySummary(w http.ResponseWriter, r *http.Request) {
	result, err := s.cfg.Analyzer.Latest(r.Context(), "api")
	if err != nil {
		s.failed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, weeklySummaryResponse{
		Success:       true,
		WeeklySummary: service.Summarize(result),
		LastUpdated:   result.Run.CompletedAt,
	})
}

func (s *Server) handleSuggestedMulti(w http.ResponseWriter, r *http.Request) {
	target, err := floatParam(r, "target_odds", s.cfg.App.Multi.TargetMultiOdds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if target <= 1 {
		writeError(w, http.StatusBadRequest, errors.New("target_odds must be greater than 1"))
		return
	}
	maxLegs, err := intParam(r, "max_legs", s.cfg.App.Multi.MaxLegsInMulti)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if maxLegs < 1 {
		writeError(w, http.StatusBadRequest, errors.New("max_legs must be at least 1"))
		return
	}

	result, err := s.cfg.Analyzer.Latest(r.Context(), "api")
	if err != nil {
		s.failed(w, r, err)
		return
	}

	pipeline := s.cfg.Analyzer.Pipeline()
	writeJSON(w, http.StatusOK, suggestedMultiResponse{
		Success:        true,
		SuggestedMulti: pipeline.BuildMulti(result.Run.Recommendations, target, maxLegs),
	})
}

func (s *Server) handleSports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sportsResponse{Success: true, Sports: models.SupportedSports()})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.audit.LogSettingsViewed(r.RemoteAddr)

	app := s.cfg.App
	writeJSON(w, http.StatusOK, settingsResponse{
		Success: true,
		Settings: settingsDetail{
			MinEVThreshold:         app.Selection.MinEVThreshold,
			MinConfidenceThreshold: app.Selection.MinConfidenceThreshold,
			MinOddsFilter:          app.Selection.MinOddsFilter,
			MaxOddsFilter:          app.Selection.MaxOddsFilter,
			Stage1MinModelProb:     app.Selection.Stage1MinModelProb,
			Stage1MinEdge:          app.Selection.Stage1MinEdge,
			Stage1MinEV:            app.Selection.Stage1MinEV,
			Stage1CandidateLimit:   app.Selection.Stage1CandidateLimit,
			RecommendedLegsCount:   app.Selection.RecommendedLegsCount,
			TargetMultiOdds:        app.Multi.TargetMultiOdds,
			MaxLegsInMulti:         app.Multi.MaxLegsInMulti,
			Sports:                 app.Sports,
		},
	})
}

func (s *Server) handleTeamStats(w http.ResponseWriter, r *http.Request) {
	sport, err := models.ParseSport(chi.URLParam(r, "sport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	team := chi.URLParam(r, "team")

	writeJSON(w, http.StatusOK, teamStatsResponse{
		Success: true,
		Sport:   sport,
		Team:    team,
		Stats:   s.cfg.Deriver.Derive(team, sport, referenceTeamOdds, true),
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats := s.cfg.OddsCache.CacheStats()
	resp := cacheStatsResponse{
		Success:     true,
		Cache:       stats,
		TTLMinutes:  float64(stats.TTLSeconds) / 60,
		Description: cacheDescription,
	}
	if s.cfg.Predictions != nil {
		hits, misses, ratio := s.cfg.Predictions.GetCacheStats()
		resp.Predictions = &predictionStats{Hits: hits, Misses: misses, HitRatio: ratio}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	entries := s.cfg.OddsCache.CacheStats().TotalEntries
	s.cfg.OddsCache.ClearCache()
	if s.cfg.Predictions != nil {
		s.cfg.Predictions.ClearCache()
	}
	s.cfg.Analyzer.Invalidate()
	s.audit.LogCacheCleared("odds_api", entries, r.RemoteAddr)

	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Cache cleared. Next request will fetch fresh data from API.",
	})
}

func (s *Server) handleFetchOdds(w http.ResponseWriter, r *http.Request) {
	snap, err := s.cfg.Odds.RefreshSnapshot(r.Context())
	if err != nil {
		s.failed(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, fetchOddsResponse{
		Success:   true,
		Message:   fmt.Sprintf("Fetched and stored %d markets", len(snap.Quotes)),
		FetchTime: snap.FetchedAt,
		Sports:    snap.CountBySport(),
	})
}

func (s *Server) handleStoredDataStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.cfg.Odds.Status(r.Context())
	if err != nil {
		s.failed(w, r, err)
		return
	}

	resp := storedDataStatusResponse{
		Success:        true,
		SnapshotStatus: *status,
		IsFetchDay:     scheduler.IsFetchDay(time.Now()),
		FetchDays:      scheduler.FetchDays,
	}
	if !status.HasStoredData {
		resp.Message = "No stored data. Run POST /fetch-odds to fetch."
	}
	writeJSON(w, http.StatusOK, resp)
}

// failed maps upstream failures onto a response status
func (s *Server) failed(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch datasource.ErrorCode(err) {
	case datasource.ErrCodeRateLimitExceeded, datasource.ErrCodeQuotaExhausted:
		status = http.StatusTooManyRequests
	case datasource.ErrCodeNetworkError, datasource.ErrCodeServerError, datasource.ErrCodeAuthenticationFailed:
		status = http.StatusBadGateway
	}
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
	writeError(w, status, err)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return f, nil
}
