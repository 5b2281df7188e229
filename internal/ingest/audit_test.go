package ingest

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/ballpark-live/internal/models"
)

func auditTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestAuditWriteSummary(t *testing.T) {
	dir := t.TempDir()
	writer := NewAuditWriter(dir, auditTestLogger())

	reports := []*GameReport{
		{GameID: "g-clean"},
		{GameID: "g-warned", Findings: []*models.Finding{
			models.NewFinding(RuleCrossTeamRuns, models.SeverityWarning, "g-warned"),
		}},
		{GameID: "g-bad", Findings: []*models.Finding{
			models.NewFinding(RuleBatHitsLEAtBats, models.SeverityError, "g-bad"),
			models.NewFinding(RuleBatHitsLEAtBats, models.SeverityError, "g-bad"),
		}},
	}

	runAt := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)
	outDir, err := writer.Write(runAt, 2026, time.July, reports)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-08-01"), outDir)

	raw, err := os.ReadFile(filepath.Join(outDir, "validation_summary.json"))
	require.NoError(t, err)

	var summary Summary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, 3, summary.GamesTotal)
	assert.Equal(t, 2, summary.GamesAdmitted)
	assert.Equal(t, 1, summary.GamesRejected)
	assert.Equal(t, []string{"g-bad"}, summary.ErrorGames)
	assert.Equal(t, []string{"g-warned"}, summary.WarningGames)
	assert.Equal(t, 2, summary.RuleCounts[RuleBatHitsLEAtBats])
	require.NotEmpty(t, summary.TopRules)
	assert.Equal(t, RuleBatHitsLEAtBats, summary.TopRules[0].Rule)
}

func TestAuditWritePerGameFiles(t *testing.T) {
	dir := t.TempDir()
	writer := NewAuditWriter(dir, auditTestLogger())

	reports := []*GameReport{
		{GameID: "g-clean"},
		{GameID: "g-bad", Findings: []*models.Finding{
			models.NewFinding(RulePitERLERuns, models.SeverityError, "g-bad"),
		}},
	}

	outDir, err := writer.Write(time.Now(), 2026, time.June, reports)
	require.NoError(t, err)

	// only games with findings get a per-game file
	_, err = os.Stat(filepath.Join(outDir, "g-clean.json"))
	assert.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(filepath.Join(outDir, "g-bad.json"))
	require.NoError(t, err)

	var report GameReport
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "g-bad", report.GameID)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, RulePitERLERuns, report.Findings[0].Rule)
}
