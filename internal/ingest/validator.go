package ingest

import (
	"fmt"

	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/models"
)

// Validation rule identifiers
const (
	RuleBatHitsLEAtBats  = "bat_H_le_AB"
	RuleBatSinglesNonNeg = "bat_singles_nonneg"
	RulePitERLERuns      = "pit_ER_le_R"
	RulePitHRLEHits      = "pit_HR_le_H"
	RuleCrossTeamRuns    = "xteam_runs_match"
	RuleBatNoAtBats      = "bat_no_AB"
)

// GameReport holds the validation outcome for one game
type GameReport struct {
	GameID   string            `json:"game_id"`
	Findings []*models.Finding `json:"findings"`
}

// Admissible reports whether the game may be merged. Warning findings do
// not block ingestion.
func (r *GameReport) Admissible() bool {
	for _, f := range r.Findings {
		if f.IsBlocking() {
			return false
		}
	}
	return true
}

// ErrorCount returns the number of error-severity findings
func (r *GameReport) ErrorCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.IsBlocking() {
			n++
		}
	}
	return n
}

// Validator evaluates per-game consistency rules over fetched box scores
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGame runs every rule against one fetched game and returns its report
func (v *Validator) ValidateGame(game *datasource.GameData) *GameReport {
	report := &GameReport{GameID: game.SourceID}

	for i := range game.Batting {
		report.Findings = append(report.Findings, v.checkBattingLine(game.SourceID, &game.Batting[i])...)
	}
	for i := range game.Pitching {
		report.Findings = append(report.Findings, v.checkPitchingLine(game.SourceID, &game.Pitching[i])...)
	}
	report.Findings = append(report.Findings, v.checkCrossTeamRuns(game)...)
	report.Findings = append(report.Findings, v.checkTeamAtBats(game)...)

	return report
}

// checkBattingLine evaluates the per-row batting rules
func (v *Validator) checkBattingLine(gameID string, l *datasource.BattingData) []*models.Finding {
	var findings []*models.Finding

	if l.Hits > l.AtBats {
		findings = append(findings, models.NewFinding(RuleBatHitsLEAtBats, models.SeverityError, gameID).
			WithTeam(l.Team).
			WithPlayer(l.PlayerID).
			WithDetail("hits", l.Hits).
			WithDetail("at_bats", l.AtBats))
	}

	if singles := l.Hits - l.Doubles - l.Triples - l.HomeRuns; singles < 0 {
		findings = append(findings, models.NewFinding(RuleBatSinglesNonNeg, models.SeverityError, gameID).
			WithTeam(l.Team).
			WithPlayer(l.PlayerID).
			WithDetail("singles", singles).
			WithDetail("hits", l.Hits))
	}

	return findings
}

// checkPitchingLine evaluates the per-row pitching rules
func (v *Validator) checkPitchingLine(gameID string, l *datasource.PitchingData) []*models.Finding {
	var findings []*models.Finding

	if l.EarnedRuns > l.RunsAllowed {
		findings = append(findings, models.NewFinding(RulePitERLERuns, models.SeverityError, gameID).
			WithTeam(l.Team).
			WithPlayer(l.PlayerID).
			WithDetail("earned_runs", l.EarnedRuns).
			WithDetail("runs_allowed", l.RunsAllowed))
	}

	if l.HomeRunsAllowed > l.HitsAllowed {
		findings = append(findings, models.NewFinding(RulePitHRLEHits, models.SeverityError, gameID).
			WithTeam(l.Team).
			WithPlayer(l.PlayerID).
			WithDetail("home_runs_allowed", l.HomeRunsAllowed).
			WithDetail("hits_allowed", l.HitsAllowed))
	}

	return findings
}

// checkCrossTeamRuns compares a team's runs scored (batting) with the runs
// the opposing pitchers are charged with. Japanese score sheets are
// occasionally off by one on unearned-run attribution, so a one-run gap is
// only a warning.
func (v *Validator) checkCrossTeamRuns(game *datasource.GameData) []*models.Finding {
	battingRuns := make(map[string]int)
	for _, l := range game.Batting {
		battingRuns[l.Team] += l.Runs
	}
	pitchingRuns := make(map[string]int)
	for _, l := range game.Pitching {
		pitchingRuns[l.Team] += l.RunsAllowed
	}

	var findings []*models.Finding
	pairs := [][2]string{{game.HomeTeam, game.AwayTeam}, {game.AwayTeam, game.HomeTeam}}
	for _, pair := range pairs {
		team, opponent := pair[0], pair[1]
		scored, ok := battingRuns[team]
		if !ok {
			continue // no batting lines for this team, bat_no_AB covers it
		}
		allowed := pitchingRuns[opponent]

		diff := scored - allowed
		if diff < 0 {
			diff = -diff
		}
		if diff == 0 {
			continue
		}

		severity := models.SeverityWarning
		if diff > 1 {
			severity = models.SeverityError
		}
		findings = append(findings, models.NewFinding(RuleCrossTeamRuns, severity, game.SourceID).
			WithTeam(team).
			WithDetail("runs_scored", scored).
			WithDetail("opponent_runs_allowed", allowed).
			WithDetail("diff", diff))
	}

	return findings
}

// checkTeamAtBats flags a team whose batting lines carry zero at-bats,
// which usually means the source published an incomplete box score
func (v *Validator) checkTeamAtBats(game *datasource.GameData) []*models.Finding {
	atBats := make(map[string]int)
	for _, l := range game.Batting {
		atBats[l.Team] += l.AtBats
	}

	var findings []*models.Finding
	for _, team := range []string{game.HomeTeam, game.AwayTeam} {
		if atBats[team] == 0 {
			findings = append(findings, models.NewFinding(RuleBatNoAtBats, models.SeverityWarning, game.SourceID).
				WithTeam(team).
				WithDetail("reason", fmt.Sprintf("no at-bats recorded for %s", team)))
		}
	}

	return findings
}
