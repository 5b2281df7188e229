// Package metrics provides the centralized Prometheus metrics registry
// for the win-probability service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EstimatesServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "estimates_served_total",
		Help:      "Total number of win-probability estimates served",
	})
	RollbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "rollbacks_total",
		Help:      "Total number of automatic version rollbacks executed",
	})
	ParamsReloadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "params_reloads_total",
		Help:      "Total number of live parameter cache invalidations",
	})
	RowsMergedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "rows_merged_total",
		Help:      "Rows inserted by the backfill anti-join merge, by table",
	}, []string{"table"})
	ValidationFindingsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "validation_findings_total",
		Help:      "Validation findings produced, by severity",
	}, []string{"severity"})
	GamesRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ballpark_live",
		Name:      "games_rejected_total",
		Help:      "Games excluded from ingestion by the validation gate",
	})
)

// Gauge metrics
var (
	RollingLogLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ballpark_live",
		Name:      "rolling_logloss",
		Help:      "Most recent 10-minute rolling log-loss observed by the monitor",
	})
	RollingBrier = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ballpark_live",
		Name:      "rolling_brier",
		Help:      "Most recent 10-minute rolling Brier score observed by the monitor",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ballpark_live",
		Name:      "stream_clients",
		Help:      "Currently connected estimate stream clients",
	})
)

// Histogram metrics
var (
	EstimateLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ballpark_live",
		Name:      "estimate_latency_seconds",
		Help:      "Latency of estimate computations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BackfillDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ballpark_live",
		Name:      "backfill_duration_seconds",
		Help:      "Duration of monthly backfill runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EstimatesServedTotal)
		registry.MustRegister(RollbacksTotal)
		registry.MustRegister(ParamsReloadsTotal)
		registry.MustRegister(RowsMergedTotal)
		registry.MustRegister(ValidationFindingsTotal)
		registry.MustRegister(GamesRejectedTotal)

		registry.MustRegister(RollingLogLoss)
		registry.MustRegister(RollingBrier)
		registry.MustRegister(StreamClients)

		registry.MustRegister(EstimateLatency)
		registry.MustRegister(BackfillDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEstimate records a served estimate and its latency.
func RecordEstimate(durationSeconds float64) {
	EstimatesServedTotal.Inc()
	EstimateLatency.Observe(durationSeconds)
}

// RecordRollback records an executed rollback.
func RecordRollback() {
	RollbacksTotal.Inc()
}

// RecordParamsReload records a live parameter cache invalidation.
func RecordParamsReload() {
	ParamsReloadsTotal.Inc()
}

// UpdateRollingQuality updates the re-exported rolling quality gauges.
func UpdateRollingQuality(logLoss, brier float64) {
	RollingLogLoss.Set(logLoss)
	RollingBrier.Set(brier)
}

// RecordMergedRows records rows inserted into a table by the merge.
func RecordMergedRows(table string, count int) {
	RowsMergedTotal.WithLabelValues(table).Add(float64(count))
}

// RecordFinding records a validation finding by severity.
func RecordFinding(severity string) {
	ValidationFindingsTotal.WithLabelValues(severity).Inc()
}

// RecordRejectedGame records a game blocked by the validation gate.
func RecordRejectedGame() {
	GamesRejectedTotal.Inc()
}

// RecordBackfillDuration records a backfill run duration.
func RecordBackfillDuration(durationSeconds float64) {
	BackfillDuration.Observe(durationSeconds)
}

// SetStreamClients sets the current number of connected stream clients.
func SetStreamClients(count int) {
	StreamClients.Set(float64(count))
}
