// Package api serves the pipeline over HTTP: recommendation endpoints,
// snapshot management, health checks and a websocket refresh stream.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/clever-multi/internal/config"
	"github.com/yourusername/clever-multi/internal/datasource"
	"github.com/yourusername/clever-multi/internal/logger"
	"github.com/yourusername/clever-multi/internal/metrics"
	"github.com/yourusername/clever-multi/internal/service"
	"github.com/yourusername/clever-multi/internal/signals"
)

// DatabaseChecker defines the interface for checking database health.
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// OddsCache is the upstream response cache
type OddsCache interface {
	CacheStats() datasource.CacheStats
	ClearCache()
}

// PredictionCache is the trained-model prediction cache
type PredictionCache interface {
	GetCacheStats() (hits, misses uint64, hitRatio float64)
	ClearCache()
}

// Config holds the configuration for the API server.
type Config struct {
	ServiceName string
	Version     string
	App         *config.Config
	Analyzer    *service.Analyzer
	Odds        *service.OddsService
	OddsCache   OddsCache
	Predictions PredictionCache
	Deriver     *signals.Deriver
	DB          DatabaseChecker
	Hub         *Hub
	Logger      *logrus.Logger
}

// Server is the HTTP API server.
type Server struct {
	cfg    Config
	server *http.Server
	logger *logrus.Logger
	audit  *logger.AuditLogger
	mu     sync.RWMutex
	ready  bool

	stopOnce sync.Once
	stopErr  error
}

// NewServer creates a new API server. Snapshot refreshes are pushed to
// websocket clients when a hub is configured.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		audit:  logger.NewAuditLogger(cfg.Logger),
	}
	if cfg.Hub != nil && cfg.Odds != nil {
		cfg.Odds.OnRefresh(func(summary service.RefreshSummary) {
			cfg.Hub.Broadcast(Message{Type: MessageSnapshotRefreshed, Data: summary})
		})
	}
	return s
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.App.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))

		r.Get("/", s.handleRoot)
		r.Get("/ready", s.handleReady)

		r.Get("/value-bets", s.handleValueBets)
		r.Get("/recommended-legs", s.handleRecommendedLegs)
		r.Get("/weekly-summary", s.handleWeeklySummary)
		r.Get("/suggested-multi", s.handleSuggestedMulti)
		r.Get("/sports", s.handleSports)
		r.Get("/settings", s.handleSettings)
		r.Get("/team-stats/{sport}/{team}", s.handleTeamStats)

		r.Get("/cache-stats", s.handleCacheStats)
		r.Post("/clear-cache", s.handleClearCache)
		r.Post("/fetch-odds", s.handleFetchOdds)
		r.Get("/stored-data-status", s.handleStoredDataStatus)
	})

	if s.cfg.App.Metrics.Enabled {
		r.Handle(s.cfg.App.Metrics.Path, metrics.Handler())
	}
	if s.cfg.Hub != nil {
		r.Get("/ws", s.cfg.Hub.ServeWS)
	}

	return r
}

// Start starts the server in the background and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := s.cfg.App.Server
	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(srv.Port),
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(srv.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(srv.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    srv.Port,
			"service": s.cfg.ServiceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		if err := s.Shutdown(); err != nil {
			s.logger.WithError(err).Warn("API server shutdown incomplete")
		}
	}()

	s.SetReady(true)
	return nil
}

// Shutdown gracefully shuts down the server. Only the first call has effect.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	s.stopOnce.Do(func() {
		s.SetReady(false)
		s.logger.Info("API server shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.stopErr = s.server.Shutdown(ctx)
	})
	return s.stopErr
}

// handleReady checks readiness and database connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if s.cfg.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.cfg.DB.HealthCheck(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	response.Status = "ok"
	if !allHealthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  chimiddleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
