// Package logger provides probability-source logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// MLLogger provides dedicated logging for probability sources.
type MLLogger struct {
	*logrus.Entry
}

// NewMLLogger creates a new ML logger.
func NewMLLogger(baseLogger *logrus.Logger) *MLLogger {
	return &MLLogger{
		Entry: baseLogger.WithField("component", "ml"),
	}
}

// LogPredictionRequest logs a probability request against a source.
func (ml *MLLogger) LogPredictionRequest(source string, featuresCount int, cacheHit bool, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"source":         source,
		"features_count": featuresCount,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Debug("Probability request completed")
}

// LogSourceDegraded logs a fall-through from one probability source to the next.
func (ml *MLLogger) LogSourceDegraded(source, fallback string, err error) {
	ml.WithFields(logrus.Fields{
		"source":   source,
		"fallback": fallback,
		"error":    err.Error(),
	}).Debug("Probability source degraded")
}
