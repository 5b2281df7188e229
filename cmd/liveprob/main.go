// Package main provides the entry point for the live win-probability daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/config"
	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/health"
	"github.com/yourusername/ballpark-live/internal/ingest"
	"github.com/yourusername/ballpark-live/internal/liveparams"
	applogger "github.com/yourusername/ballpark-live/internal/logger"
	"github.com/yourusername/ballpark-live/internal/metrics"
	"github.com/yourusername/ballpark-live/internal/monitor"
	"github.com/yourusername/ballpark-live/internal/repository"
	"github.com/yourusername/ballpark-live/internal/scheduler"
	"github.com/yourusername/ballpark-live/internal/service"
	"github.com/yourusername/ballpark-live/internal/stream"
	"github.com/yourusername/ballpark-live/internal/version"
	"github.com/yourusername/ballpark-live/internal/winprob"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Secrets.Enabled {
		if err := config.LoadSecretsFromAWS(cfg, cfg.Secrets.Region, cfg.Secrets.SecretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := applogger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"commit":      GitCommit,
	}).Info("Ballpark Live daemon starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.InitRegistry()

	// Live estimate path
	store := liveparams.NewStore(cfg.LiveParams.Path, appLog)
	estimator := winprob.NewEstimator(store, appLog)

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub(time.Duration(cfg.Stream.WriteTimeoutSeconds)*time.Second, appLog)
	}
	apiServer := service.NewServer(cfg.Server, estimator, store, hub, appLog)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics, appLog)
	}

	// Health endpoint shares the metrics process, separate port
	db := connectDatabase(ctx, cfg, appLog)
	if db != nil {
		defer db.Close()
	}
	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        os.Getenv("HEALTH_PORT"),
		Logger:      appLog,
		Params:      store,
		VersionRoot: cfg.Versioning.Root,
	}
	if db != nil {
		healthCfg.DB = db
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	// Auto-rollback monitor
	if cfg.Monitor.Enabled {
		go runMonitor(ctx, cfg, appLog)
	}

	// Scheduled monthly backfill
	if cfg.Backfill.Schedule != "" && db != nil {
		sched, err := buildScheduler(cfg, db, appLog)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to build backfill scheduler")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start backfill scheduler")
		}
		defer sched.Stop()
	}

	if err := apiServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Estimate API terminated")
	}
	appLog.Info("Ballpark Live daemon stopped")
}

// connectDatabase is best-effort: the estimate path works without a store,
// only backfill scheduling and the readiness probe need it
func connectDatabase(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) *database.DB {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Warn("Database unavailable, backfill scheduling disabled")
		return nil
	}
	appLog.Info("Database connection established")
	return db
}

// serveMetrics exposes the Prometheus registry on its own port
func serveMetrics(cfg config.MetricsConfig, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, metrics.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	appLog.WithField("address", addr).Info("Metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		appLog.WithError(err).Error("Metrics server terminated")
	}
}

// runMonitor wires and runs the auto-rollback monitor until shutdown
func runMonitor(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) {
	manager := version.NewManager(cfg.Versioning.Root, cfg.Versioning.LiveConfigPath, appLog)
	source := monitor.NewHTTPMetricsSource(cfg.Monitor.MetricsURL, appLog)

	var notifier monitor.ReloadNotifier
	if cfg.Monitor.ReloadURL != "" {
		notifier = monitor.NewHTTPReloadNotifier(cfg.Monitor.ReloadURL, appLog)
	}

	rollback := monitor.NewRollbackMonitor(monitor.Config{
		CheckInterval:       cfg.MonitorInterval(),
		CooldownPeriod:      cfg.MonitorCooldown(),
		ConsecutiveFailures: cfg.Monitor.MaxConsecutiveFailures,
		LogLossThreshold:    cfg.Monitor.LogLossThreshold,
		BrierThreshold:      cfg.Monitor.BrierThreshold,
	}, source, manager, notifier, appLog)

	if err := rollback.Start(ctx); err != nil {
		appLog.WithError(err).Error("Rollback monitor terminated")
	}
}

// buildScheduler assembles the backfill pipeline behind the cron job
func buildScheduler(cfg *config.Config, db *database.DB, appLog *logrus.Logger) (*scheduler.Scheduler, error) {
	repos, err := repository.NewRepositories(db)
	if err != nil {
		return nil, err
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
	sources, err := datasource.NewFactory(appLog).NewDataSources(cfg.Backfill.Sources, httpClient)
	if err != nil {
		return nil, err
	}

	audit := ingest.NewAuditWriter(cfg.Backfill.AuditDir, appLog)
	pipeline := ingest.NewPipeline(sources[0], audit, db, repos, appLog)

	sched := scheduler.NewScheduler(pipeline, appLog)
	if err := sched.ScheduleMonthlyBackfill(cfg.Backfill.Schedule); err != nil {
		return nil, err
	}
	return sched, nil
}
