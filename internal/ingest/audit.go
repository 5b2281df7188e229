package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Summary aggregates a validation run across all games of a month
type Summary struct {
	RunAt         time.Time      `json:"run_at"`
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	GamesTotal    int            `json:"games_total"`
	GamesAdmitted int            `json:"games_admitted"`
	GamesRejected int            `json:"games_rejected"`
	ErrorGames    []string       `json:"error_games"`
	WarningGames  []string       `json:"warning_games"`
	RuleCounts    map[string]int `json:"rule_counts"`
	TopRules      []RuleCount    `json:"top_rules"`
}

// RuleCount pairs a rule id with how many findings it produced
type RuleCount struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// AuditWriter persists validation reports as JSON files under a
// date-stamped directory, one file per game plus an aggregate summary
type AuditWriter struct {
	baseDir string
	logger  *logrus.Logger
}

// NewAuditWriter creates an audit writer rooted at baseDir
func NewAuditWriter(baseDir string, logger *logrus.Logger) *AuditWriter {
	return &AuditWriter{baseDir: baseDir, logger: logger}
}

// Write persists every game report and the run summary. It returns the
// directory the files were written to.
func (w *AuditWriter) Write(runAt time.Time, year int, month time.Month, reports []*GameReport) (string, error) {
	dir := filepath.Join(w.baseDir, runAt.UTC().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audit directory: %w", err)
	}

	summary := buildSummary(runAt, year, month, reports)

	for _, report := range reports {
		if len(report.Findings) == 0 {
			continue
		}
		path := filepath.Join(dir, report.GameID+".json")
		if err := writeJSON(path, report); err != nil {
			return "", fmt.Errorf("failed to write audit for game %s: %w", report.GameID, err)
		}
	}

	if err := writeJSON(filepath.Join(dir, "validation_summary.json"), summary); err != nil {
		return "", fmt.Errorf("failed to write validation summary: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"dir":      dir,
		"admitted": summary.GamesAdmitted,
		"rejected": summary.GamesRejected,
	}).Info("Wrote validation audit")

	return dir, nil
}

// buildSummary computes the aggregate view over a run's reports
func buildSummary(runAt time.Time, year int, month time.Month, reports []*GameReport) *Summary {
	summary := &Summary{
		RunAt:        runAt.UTC(),
		Year:         year,
		Month:        int(month),
		GamesTotal:   len(reports),
		ErrorGames:   []string{},
		WarningGames: []string{},
		RuleCounts:   make(map[string]int),
	}

	for _, report := range reports {
		hasWarning := false
		for _, f := range report.Findings {
			summary.RuleCounts[f.Rule]++
			if !f.IsBlocking() {
				hasWarning = true
			}
		}
		if report.Admissible() {
			summary.GamesAdmitted++
			if hasWarning {
				summary.WarningGames = append(summary.WarningGames, report.GameID)
			}
		} else {
			summary.GamesRejected++
			summary.ErrorGames = append(summary.ErrorGames, report.GameID)
		}
	}

	sort.Strings(summary.ErrorGames)
	sort.Strings(summary.WarningGames)

	for rule, count := range summary.RuleCounts {
		summary.TopRules = append(summary.TopRules, RuleCount{Rule: rule, Count: count})
	}
	sort.Slice(summary.TopRules, func(i, j int) bool {
		if summary.TopRules[i].Count != summary.TopRules[j].Count {
			return summary.TopRules[i].Count > summary.TopRules[j].Count
		}
		return summary.TopRules[i].Rule < summary.TopRules[j].Rule
	})

	return summary
}

// writeJSON marshals v with indentation and writes it to path
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
