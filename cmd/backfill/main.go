// Package main provides the monthly backfill CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/ballpark-live/internal/config"
	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/ingest"
	applogger "github.com/yourusername/ballpark-live/internal/logger"
	"github.com/yourusername/ballpark-live/internal/repository"
)

var (
	configFile string
	sourceName string
	dryRun     bool
	apply      bool

	cfg    *config.Config
	appLog *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&sourceName, "source", "", "Data source name (defaults to the first enabled source)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Count would-be inserts without writing")
	rootCmd.Flags().BoolVar(&apply, "apply", false, "Perform the merge")
}

var rootCmd = &cobra.Command{
	Use:   "backfill <year> <month>",
	Short: "Fetch, validate and merge one month of box scores",
	Long: `Fetches a calendar month of finished games from the configured source,
runs the validation gate over every game, and merges the admissible ones
into the stats store with insert-if-absent semantics.

With neither --dry-run nor --apply the run stops after validation.`,
	Args: cobra.ExactArgs(2),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if cfg.Secrets.Enabled {
			if err := config.LoadSecretsFromAWS(cfg, cfg.Secrets.Region, cfg.Secrets.SecretName); err != nil {
				return fmt.Errorf("failed to load secrets: %w", err)
			}
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: run,
	// usage output on validation failures only, not on runtime errors
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if dryRun && apply {
		return fmt.Errorf("--dry-run and --apply are mutually exclusive")
	}

	year, err := strconv.Atoi(args[0])
	if err != nil || year < 1900 {
		return fmt.Errorf("invalid year %q", args[0])
	}
	monthNum, err := strconv.Atoi(args[1])
	if err != nil || monthNum < 1 || monthNum > 12 {
		return fmt.Errorf("invalid month %q, must be 1-12", args[1])
	}
	month := time.Month(monthNum)

	mode := ingest.ModeValidate
	switch {
	case dryRun:
		mode = ingest.ModeDryRun
	case apply:
		mode = ingest.ModeApply
	}

	ctx := context.Background()

	var (
		db    *database.DB
		repos *repository.Repositories
	)
	if mode != ingest.ModeValidate {
		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return err
		}
	}

	source, err := pickSource()
	if err != nil {
		return err
	}

	audit := ingest.NewAuditWriter(cfg.Backfill.AuditDir, appLog)
	pipeline := ingest.NewPipeline(source, audit, db, repos, appLog)

	result, err := pipeline.Run(ctx, year, month, mode)
	if errors.Is(err, ingest.ErrNoAdmissibleGames) {
		printResult(result)
		return fmt.Errorf("no games passed validation")
	}
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

// pickSource resolves the configured data source to run against
func pickSource() (datasource.DataSource, error) {
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), appLog)
	factory := datasource.NewFactory(appLog)

	if sourceName != "" {
		for _, srcCfg := range cfg.Backfill.Sources {
			if srcCfg.Name == sourceName {
				return factory.NewDataSource(srcCfg, httpClient)
			}
		}
		return nil, fmt.Errorf("no configured source named %q", sourceName)
	}

	sources, err := factory.NewDataSources(cfg.Backfill.Sources, httpClient)
	if err != nil {
		return nil, err
	}
	return sources[0], nil
}

func printResult(result *ingest.Result) {
	if result == nil {
		return
	}
	fmt.Printf("Backfill %d-%02d (%s)\n", result.Year, result.Month, result.Mode)
	fmt.Printf("  fetched:  %d games\n", result.GamesFetched)
	fmt.Printf("  admitted: %d games\n", result.GamesAdmitted)
	fmt.Printf("  rejected: %d games\n", result.GamesRejected)
	if result.Mode != ingest.ModeValidate {
		fmt.Printf("  inserted:   games=%d batting=%d pitching=%d\n",
			result.Inserted.Games, result.Inserted.Batting, result.Inserted.Pitching)
		fmt.Printf("  duplicates: games=%d batting=%d pitching=%d\n",
			result.Duplicates.Games, result.Duplicates.Batting, result.Duplicates.Pitching)
	}
	if result.AuditDir != "" {
		fmt.Printf("  audit: %s\n", result.AuditDir)
	}
}
