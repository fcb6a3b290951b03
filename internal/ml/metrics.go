package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MLPredictionsTotal tracks total ML predictions
	MLPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of ML predictions made",
		},
		[]string{"model", "cache_hit"},
	)

	// MLPredictionLatency tracks ML prediction latency
	MLPredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ml_prediction_latency_seconds",
			Help:    "ML prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	// MLCacheHitRatio tracks cache hit ratio
	MLCacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ml_cache_hit_ratio",
			Help: "ML prediction cache hit ratio",
		},
	)

	// MLGRPCErrorsTotal tracks gRPC errors
	MLGRPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ml_grpc_errors_total",
			Help: "Total number of gRPC errors",
		},
		[]string{"method", "error_type"},
	)
)
