// Package metrics provides the centralized Prometheus registry for the service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clever_multi"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_runs_total",
		Help:      "Total number of pipeline runs",
	}, []string{"trigger"})
	QuotesAnalyzedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_analyzed_total",
		Help:      "Total number of quotes analyzed, by probability source",
	}, []string{"source"})
	QuotesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_skipped_total",
		Help:      "Total number of malformed quotes skipped",
	})
	OddsFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_fetches_total",
		Help:      "Total number of upstream odds requests",
	}, []string{"sport", "kind", "status"})
)

// Gauge metrics
var (
	StageOutputSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stage_output_size",
		Help:      "Number of selections surviving each stage of the last run",
	}, []string{"stage"})
	ParlayCombinedOdds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "parlay_combined_odds",
		Help:      "Combined odds of the last suggested parlay",
	})
	ParlayLegs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "parlay_legs",
		Help:      "Number of legs in the last suggested parlay",
	})
	OddsAPIRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "odds_api_requests_remaining",
		Help:      "Remaining upstream request quota",
	})
	SnapshotAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_age_seconds",
		Help:      "Age of the stored odds snapshot when last loaded",
	})
)

// Histogram metrics
var (
	PipelineRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_run_duration_seconds",
		Help:      "Duration of pipeline runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
	OddsFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "odds_fetch_duration_seconds",
		Help:      "Duration of full odds refreshes in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(QuotesAnalyzedTotal)
		registry.MustRegister(QuotesSkippedTotal)
		registry.MustRegister(OddsFetchesTotal)

		registry.MustRegister(StageOutputSize)
		registry.MustRegister(ParlayCombinedOdds)
		registry.MustRegister(ParlayLegs)
		registry.MustRegister(OddsAPIRequestsRemaining)
		registry.MustRegister(SnapshotAgeSeconds)

		registry.MustRegister(PipelineRunDuration)
		registry.MustRegister(OddsFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler. It also serves the default
// registry, which holds the runtime collectors and the promauto ml metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}, promhttp.HandlerOpts{})
}

// RecordRun records a completed pipeline run.
func RecordRun(trigger string, durationSeconds float64, stage1, stage2 int) {
	PipelineRunsTotal.WithLabelValues(trigger).Inc()
	PipelineRunDuration.Observe(durationSeconds)
	StageOutputSize.WithLabelValues("stage1").Set(float64(stage1))
	StageOutputSize.WithLabelValues("stage2").Set(float64(stage2))
}

// RecordAnalyzed records one analyzed quote.
func RecordAnalyzed(source string) {
	QuotesAnalyzedTotal.WithLabelValues(source).Inc()
}

// RecordSkipped records malformed quotes dropped from a run.
func RecordSkipped(n int) {
	QuotesSkippedTotal.Add(float64(n))
}

// RecordParlay records the last built parlay.
func RecordParlay(legs int, combinedOdds float64) {
	ParlayLegs.Set(float64(legs))
	ParlayCombinedOdds.Set(combinedOdds)
}

// RecordOddsFetch records one upstream request.
func RecordOddsFetch(sport, kind, status string) {
	OddsFetchesTotal.WithLabelValues(sport, kind, status).Inc()
}

// UpdateRequestsRemaining updates the upstream quota gauge.
func UpdateRequestsRemaining(n int) {
	OddsAPIRequestsRemaining.Set(float64(n))
}
