package logger

import (
	"github.com/sirupsen/logrus"
)

// PipelineLogger provides dedicated logging for the selection pipeline.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogQuoteSkipped logs a malformed quote dropped from the batch.
func (pl *PipelineLogger) LogQuoteSkipped(eventID, selection string, reason error) {
	pl.WithFields(logrus.Fields{
		"event_id":  eventID,
		"selection": selection,
		"reason":    reason.Error(),
	}).Warn("Quote skipped")
}

// LogStageCompleted logs the input/output sizes of a filter stage.
func (pl *PipelineLogger) LogStageCompleted(stage string, in, out int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"stage":       stage,
		"input":       in,
		"output":      out,
		"duration_ms": durationMs,
	}).Info("Selection stage completed")
}

// LogParlayBuilt logs the assembled parlay.
func (pl *PipelineLogger) LogParlayBuilt(legs int, combinedOdds, targetOdds, combinedProbability float64) {
	pl.WithFields(logrus.Fields{
		"legs":                 legs,
		"combined_odds":        combinedOdds,
		"target_odds":          targetOdds,
		"combined_probability": combinedProbability,
	}).Info("Parlay built")
}

// LogRunCompleted logs the end of a pipeline run.
func (pl *PipelineLogger) LogRunCompleted(runID string, quotes, skipped, recommendations int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"run_id":          runID,
		"quotes":          quotes,
		"skipped":         skipped,
		"recommendations": recommendations,
		"duration_ms":     durationMs,
	}).Info("Pipeline run completed")
}
