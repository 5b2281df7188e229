// Package logger provides estimate-path logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// EstimateLogger provides dedicated logging for the live estimate path.
type EstimateLogger struct {
	*logrus.Entry
}

// NewEstimateLogger creates a new estimate logger.
func NewEstimateLogger(baseLogger *logrus.Logger) *EstimateLogger {
	return &EstimateLogger{
		Entry: baseLogger.WithField("component", "winprob"),
	}
}

// LogEstimate logs one served win-probability frame.
func (el *EstimateLogger) LogEstimate(gameID string, inning, outs int, phase string, pMixed, pFinal float64, confidence string, latencyMs float64) {
	el.WithFields(logrus.Fields{
		"game_id":    gameID,
		"inning":     inning,
		"outs":       outs,
		"phase":      phase,
		"p_mixed":    pMixed,
		"p_final":    pFinal,
		"confidence": confidence,
		"latency_ms": latencyMs,
	}).Debug("Estimate served")
}

// LogParamsReload logs a live parameters cache invalidation.
func (el *EstimateLogger) LogParamsReload(trigger string) {
	el.WithField("trigger", trigger).Info("Live parameters reloaded")
}
