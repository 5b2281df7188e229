// Package logger provides versioning and rollback logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// OpsLogger provides dedicated logging for version and rollback operations.
type OpsLogger struct {
	*logrus.Entry
}

// NewOpsLogger creates a new operations logger.
func NewOpsLogger(baseLogger *logrus.Logger) *OpsLogger {
	return &OpsLogger{
		Entry: baseLogger.WithField("component", "versioning"),
	}
}

// LogVersionCommit logs a model/config snapshot commit.
func (ol *OpsLogger) LogVersionCommit(kind, versionID, artifactPath, description string) {
	ol.WithFields(logrus.Fields{
		"kind":          kind,
		"version_id":    versionID,
		"artifact_path": artifactPath,
		"description":   description,
	}).Info("Version committed")
}

// LogVersionSwitch logs an active-pointer move.
func (ol *OpsLogger) LogVersionSwitch(kind, fromVersion, toVersion string) {
	ol.WithFields(logrus.Fields{
		"kind":         kind,
		"from_version": fromVersion,
		"to_version":   toVersion,
	}).Info("Active version switched")
}

// LogRollback logs an automatic rollback execution.
func (ol *OpsLogger) LogRollback(reason string, logLoss, brier float64, consecutiveFailures int, at time.Time) {
	ol.WithFields(logrus.Fields{
		"reason":               reason,
		"logloss":              logLoss,
		"brier":                brier,
		"consecutive_failures": consecutiveFailures,
		"timestamp":            at.Unix(),
	}).Warn("Automatic rollback executed")
}

// LogCleanup logs an old-version cleanup pass.
func (ol *OpsLogger) LogCleanup(kind string, removed, kept int) {
	ol.WithFields(logrus.Fields{
		"kind":    kind,
		"removed": removed,
		"kept":    kept,
	}).Info("Version cleanup completed")
}
