package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	applogger "github.com/yourusername/ballpark-live/internal/logger"
	"github.com/yourusername/ballpark-live/internal/metrics"
	"github.com/yourusername/ballpark-live/internal/version"
)

// VersionStore is the slice of the version manager the monitor drives
type VersionStore interface {
	PriorVersion(kind version.Kind) (string, error)
	Switch(kind version.Kind, versionID string) error
}

// Config holds the rollback monitor thresholds and timing
type Config struct {
	CheckInterval       time.Duration
	CooldownPeriod      time.Duration
	ConsecutiveFailures int
	LogLossThreshold    float64
	BrierThreshold      float64
}

// DefaultConfig returns the production defaults
func DefaultConfig() Config {
	return Config{
		CheckInterval:       30 * time.Second,
		CooldownPeriod:      300 * time.Second,
		ConsecutiveFailures: 3,
		LogLossThreshold:    0.69,
		BrierThreshold:      0.25,
	}
}

// State is the monitor's mutable bookkeeping. Only the monitor's own
// check loop mutates it.
type State struct {
	LastCheck           time.Time `json:"last_check"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastRollback        time.Time `json:"last_rollback"`
	RollbackCount       int       `json:"rollback_count"`
}

// RollbackMonitor polls rolling quality metrics and reverts the active
// model/config versions on sustained threshold breach. It is the sole
// invoker of version switches in production.
type RollbackMonitor struct {
	config   Config
	source   MetricsSource
	versions VersionStore
	notifier ReloadNotifier
	logger   *logrus.Logger
	ops      *applogger.OpsLogger
	now      func() time.Time
	mu       sync.RWMutex
	state    State
	done     chan struct{}
}

// NewRollbackMonitor creates a rollback monitor
func NewRollbackMonitor(
	config Config,
	source MetricsSource,
	versions VersionStore,
	notifier ReloadNotifier,
	logger *logrus.Logger,
) *RollbackMonitor {
	return &RollbackMonitor{
		config:   config,
		source:   source,
		versions: versions,
		notifier: notifier,
		logger:   logger,
		ops:      applogger.NewOpsLogger(logger),
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the polling loop and blocks until the context is canceled
// or Stop is called. An in-flight check finishes before the loop exits.
func (m *RollbackMonitor) Start(ctx context.Context) error {
	m.logger.WithFields(logrus.Fields{
		"check_interval":    m.config.CheckInterval,
		"cooldown_period":   m.config.CooldownPeriod,
		"logloss_threshold": m.config.LogLossThreshold,
		"brier_threshold":   m.config.BrierThreshold,
	}).Info("Starting rollback monitor")

	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Rollback monitor stopped by context")
			return ctx.Err()

		case <-m.done:
			m.logger.Info("Rollback monitor stopped")
			return nil

		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}

// Stop gracefully stops the monitor loop
func (m *RollbackMonitor) Stop() {
	close(m.done)
}

// GetState returns a copy of the monitor state
func (m *RollbackMonitor) GetState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CheckOnce performs a single monitoring tick: read metrics, track
// consecutive threshold breaches, and roll back once the streak reaches
// the configured count. Metric-read failures count as no data, not as a
// quality failure.
func (m *RollbackMonitor) CheckOnce(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.state.LastRollback.IsZero() && now.Sub(m.state.LastRollback) < m.config.CooldownPeriod {
		m.logger.WithField("last_rollback", m.state.LastRollback).Debug("Within rollback cooldown, skipping check")
		return
	}
	m.state.LastCheck = now

	sample, err := m.source.Fetch(ctx)
	if err != nil {
		m.logger.WithError(err).Warn("Metrics unavailable this tick, treating as no data")
		return
	}

	metrics.UpdateRollingQuality(sample.LogLoss, sample.Brier)

	breach := sample.LogLoss > m.config.LogLossThreshold || sample.Brier > m.config.BrierThreshold
	if !breach {
		if m.state.ConsecutiveFailures > 0 {
			m.logger.WithField("previous_failures", m.state.ConsecutiveFailures).Info("Quality metrics recovered")
		}
		m.state.ConsecutiveFailures = 0
		return
	}

	m.state.ConsecutiveFailures++
	m.logger.WithFields(logrus.Fields{
		"logloss":              sample.LogLoss,
		"brier":                sample.Brier,
		"consecutive_failures": m.state.ConsecutiveFailures,
		"threshold_count":      m.config.ConsecutiveFailures,
	}).Warn("Quality threshold breached")

	if m.state.ConsecutiveFailures < m.config.ConsecutiveFailures {
		return
	}

	if err := m.executeRollback(ctx); err != nil {
		m.logger.WithError(err).Error("Rollback refused")
		return
	}

	m.ops.LogRollback("quality threshold breached", sample.LogLoss, sample.Brier,
		m.state.ConsecutiveFailures, m.now())
	m.state.ConsecutiveFailures = 0
	m.state.LastRollback = m.now()
	m.state.RollbackCount++
	metrics.RecordRollback()
}

// executeRollback reverts model and config to their prior versions,
// whichever kinds have one, then notifies the serving process. With no
// prior version for either kind the rollback is refused and the system
// stays on the current versions.
func (m *RollbackMonitor) executeRollback(ctx context.Context) error {
	reverted := 0

	for _, kind := range []version.Kind{version.KindModel, version.KindConfig} {
		prior, err := m.versions.PriorVersion(kind)
		if errors.Is(err, version.ErrNoPriorVersion) {
			m.logger.WithField("kind", kind).Warn("No prior version available")
			continue
		}
		if err != nil {
			return err
		}

		if err := m.versions.Switch(kind, prior); err != nil {
			return err
		}

		m.logger.WithFields(logrus.Fields{
			"kind":    kind,
			"version": prior,
		}).Error("Rolled back to prior version after quality regression")
		reverted++
	}

	if reverted == 0 {
		return version.ErrNoPriorVersion
	}

	// Best-effort: a failed notification is an operational alert, the
	// rollback itself already succeeded
	if m.notifier != nil {
		if err := m.notifier.NotifyReload(ctx); err != nil {
			m.logger.WithError(err).Error("Reload notification failed after rollback; live params may be stale")
		}
	}

	return nil
}
