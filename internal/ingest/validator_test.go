package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/models"
)

// cleanGame builds a consistent two-team game that passes every rule
func cleanGame(id string) *datasource.GameData {
	return &datasource.GameData{
		SourceID:  id,
		League:    "NPB",
		Date:      time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		HomeTeam:  "HAN",
		AwayTeam:  "YOG",
		HomeScore: 3,
		AwayScore: 1,
		Innings:   9,
		Batting: []datasource.BattingData{
			{Team: "HAN", PlayerID: "h1", AtBats: 4, Runs: 3, Hits: 2, Doubles: 1},
			{Team: "YOG", PlayerID: "a1", AtBats: 4, Runs: 1, Hits: 1},
		},
		Pitching: []datasource.PitchingData{
			{Team: "HAN", PlayerID: "hp1", OutsRecorded: 27, HitsAllowed: 1, RunsAllowed: 1, EarnedRuns: 1},
			{Team: "YOG", PlayerID: "ap1", OutsRecorded: 24, HitsAllowed: 2, RunsAllowed: 3, EarnedRuns: 3},
		},
	}
}

func findingsByRule(report *GameReport, rule string) []*models.Finding {
	var out []*models.Finding
	for _, f := range report.Findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func TestValidateCleanGame(t *testing.T) {
	report := NewValidator().ValidateGame(cleanGame("g1"))

	assert.Empty(t, report.Findings)
	assert.True(t, report.Admissible())
	assert.Equal(t, 0, report.ErrorCount())
}

func TestHitsExceedAtBats(t *testing.T) {
	game := cleanGame("g1")
	game.Batting[0].AtBats = 3
	game.Batting[0].Hits = 4

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RuleBatHitsLEAtBats)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityError, findings[0].Severity)
	assert.Equal(t, "HAN", findings[0].Team)
	assert.Equal(t, "h1", findings[0].PlayerID)
	assert.False(t, report.Admissible())
}

func TestNegativeSingles(t *testing.T) {
	game := cleanGame("g1")
	// 1 hit but 2 extra-base hits
	game.Batting[0].Hits = 1
	game.Batting[0].Doubles = 1
	game.Batting[0].HomeRuns = 1

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RuleBatSinglesNonNeg)
	require.Len(t, findings, 1)
	assert.False(t, report.Admissible())
}

func TestEarnedRunsExceedRuns(t *testing.T) {
	game := cleanGame("g1")
	game.Pitching[0].RunsAllowed = 2
	game.Pitching[0].EarnedRuns = 3
	// keep cross-team totals consistent
	game.Batting[1].Runs = 2

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RulePitERLERuns)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityError, findings[0].Severity)
	assert.False(t, report.Admissible())
}

func TestHomeRunsAllowedExceedHitsAllowed(t *testing.T) {
	game := cleanGame("g1")
	game.Pitching[1].HitsAllowed = 1
	game.Pitching[1].HomeRunsAllowed = 2

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RulePitHRLEHits)
	require.Len(t, findings, 1)
	assert.False(t, report.Admissible())
}

func TestCrossTeamRunsOffByOneIsWarning(t *testing.T) {
	game := cleanGame("g1")
	// HAN scored 3, YOG pitchers charged with 2: one-run gap
	game.Pitching[1].RunsAllowed = 2
	game.Pitching[1].EarnedRuns = 2

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RuleCrossTeamRuns)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityWarning, findings[0].Severity)
	assert.True(t, report.Admissible(), "warnings must not block ingestion")
}

func TestCrossTeamRunsLargeMismatchIsError(t *testing.T) {
	game := cleanGame("g1")
	game.Pitching[1].RunsAllowed = 0
	game.Pitching[1].EarnedRuns = 0

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RuleCrossTeamRuns)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityError, findings[0].Severity)
	assert.False(t, report.Admissible())
}

func TestTeamWithoutAtBatsIsWarning(t *testing.T) {
	game := cleanGame("g1")
	game.Batting = game.Batting[:1] // drop the away team's lines
	game.Pitching[0].RunsAllowed = 0
	game.Pitching[0].EarnedRuns = 0
	game.Pitching[0].HitsAllowed = 0

	report := NewValidator().ValidateGame(game)

	findings := findingsByRule(report, RuleBatNoAtBats)
	require.Len(t, findings, 1)
	assert.Equal(t, models.SeverityWarning, findings[0].Severity)
	assert.Equal(t, "YOG", findings[0].Team)
	assert.True(t, report.Admissible())
}
