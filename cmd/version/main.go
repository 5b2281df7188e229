// Package main provides the model/config version management CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/ballpark-live/internal/config"
	applogger "github.com/yourusername/ballpark-live/internal/logger"
	"github.com/yourusername/ballpark-live/internal/version"
)

var (
	configFile  string
	description string
	keepCount   int

	cfg     *config.Config
	appLog  *logrus.Logger
	manager *version.Manager
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	commitCmd.Flags().StringVarP(&description, "description", "d", "", "Description stored in the version metadata")
	cleanupCmd.Flags().IntVarP(&keepCount, "keep", "k", 0, "Number of versions to keep per kind (defaults to configured value)")
}

var rootCmd = &cobra.Command{
	Use:   "version",
	Short: "Manage model and config snapshots",
	Long:  `Commit, switch, list, roll back and clean up versioned model and config artifacts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLog = applogger.NewLogger(cfg.App.LogLevel)
		manager = version.NewManager(cfg.Versioning.Root, cfg.Versioning.LiveConfigPath, appLog)
		return nil
	},
	SilenceUsage: true,
}

var commitCmd = &cobra.Command{
	Use:   "commit <model|config> <artifact-path>",
	Short: "Snapshot an artifact as a new version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}

		id, err := manager.Commit(kind, args[1], description, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Committed %s version %s\n", kind, id)
		return nil
	},
}

var switchCmd = &cobra.Command{
	Use:   "switch <model|config> <version-id>",
	Short: "Make a committed version the active one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}

		if err := manager.Switch(kind, args[1]); err != nil {
			return err
		}
		fmt.Printf("Switched %s to %s\n", kind, args[1])
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List committed versions and the active pointers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := manager.ListVersions()
		if err != nil {
			return err
		}

		fmt.Printf("Models (current: %s)\n", orNone(list.Current.Model))
		for _, rec := range list.Models {
			printRecord(rec, list.Current.Model)
		}
		fmt.Printf("Configs (current: %s)\n", orNone(list.Current.Config))
		for _, rec := range list.Configs {
			printRecord(rec, list.Current.Config)
		}
		return nil
	},
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback <model|config>",
	Short: "Switch back to the version before the current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(args[0])
		if err != nil {
			return err
		}

		prior, err := manager.PriorVersion(kind)
		if err != nil {
			return err
		}
		if err := manager.Switch(kind, prior); err != nil {
			return err
		}
		fmt.Printf("Rolled %s back to %s\n", kind, prior)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old versions, keeping the newest N per kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		keep := keepCount
		if keep <= 0 {
			keep = cfg.Versioning.Keep
		}

		if err := manager.Cleanup(keep); err != nil {
			return err
		}
		fmt.Printf("Cleanup done, keeping %d versions per kind\n", keep)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(commitCmd, switchCmd, listCmd, rollbackCmd, cleanupCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseKind(s string) (version.Kind, error) {
	switch s {
	case "model":
		return version.KindModel, nil
	case "config":
		return version.KindConfig, nil
	default:
		return "", fmt.Errorf("unknown kind %q, expected model or config", s)
	}
}

func printRecord(rec version.Record, current string) {
	marker := " "
	if rec.Version == current {
		marker = "*"
	}
	line := fmt.Sprintf("%s %s  %s", marker, rec.Version, rec.Timestamp.Format("2006-01-02 15:04"))
	if rec.Description != "" {
		line += "  " + rec.Description
	}
	if rec.Performance != nil {
		line += fmt.Sprintf("  (logloss %.4f)", rec.Performance.LogLoss)
	}
	fmt.Println(line)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
