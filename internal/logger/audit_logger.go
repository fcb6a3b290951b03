// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records state changes that outlive a single request.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSnapshotStored logs a persisted odds snapshot.
func (al *AuditLogger) LogSnapshotStored(snapshotID string, quotes int, fetchedAt time.Time, store string) {
	al.WithFields(logrus.Fields{
		"snapshot_id": snapshotID,
		"quotes":      quotes,
		"fetched_at":  fetchedAt.Unix(),
		"store":       store,
	}).Info("Odds snapshot stored")
}

// LogRunPersisted logs a persisted pipeline run.
func (al *AuditLogger) LogRunPersisted(runID string, recommendations, parlayLegs int, combinedOdds float64) {
	al.WithFields(logrus.Fields{
		"run_id":          runID,
		"recommendations": recommendations,
		"parlay_legs":     parlayLegs,
		"combined_odds":   combinedOdds,
	}).Info("Pipeline run persisted")
}

// LogCacheCleared logs a manual cache purge.
func (al *AuditLogger) LogCacheCleared(cache string, entries int, requestedBy string) {
	al.WithFields(logrus.Fields{
		"cache":        cache,
		"entries":      entries,
		"requested_by": requestedBy,
	}).Info("Cache cleared")
}

// LogSettingsViewed logs a read of the effective pipeline settings.
func (al *AuditLogger) LogSettingsViewed(remoteAddr string) {
	al.WithFields(logrus.Fields{
		"remote_addr": remoteAddr,
	}).Debug("Settings viewed")
}
