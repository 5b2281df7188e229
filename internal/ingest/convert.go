package ingest

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/models"
)

// convertGame maps a fetched game to the persisted game row
func convertGame(g *datasource.GameData) *models.Game {
	return &models.Game{
		GameID:    g.SourceID,
		League:    g.League,
		Date:      g.Date,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Venue:     g.Venue,
		Innings:   g.Innings,
	}
}

// convertBatting maps a fetched game's batting lines to persisted rows
func convertBatting(g *datasource.GameData) []*models.BattingLine {
	lines := make([]*models.BattingLine, 0, len(g.Batting))
	for _, b := range g.Batting {
		lines = append(lines, &models.BattingLine{
			GameID:     g.SourceID,
			Team:       b.Team,
			PlayerID:   b.PlayerID,
			PlayerName: b.PlayerName,
			AtBats:     b.AtBats,
			Runs:       b.Runs,
			Hits:       b.Hits,
			Doubles:    b.Doubles,
			Triples:    b.Triples,
			HomeRuns:   b.HomeRuns,
			RBI:        b.RBI,
			Walks:      b.Walks,
			Strikeouts: b.Strikeouts,
			Average:    parseStat(b.Average),
		})
	}
	return lines
}

// convertPitching maps a fetched game's pitching lines to persisted rows
func convertPitching(g *datasource.GameData) []*models.PitchingLine {
	lines := make([]*models.PitchingLine, 0, len(g.Pitching))
	for _, p := range g.Pitching {
		lines = append(lines, &models.PitchingLine{
			GameID:          g.SourceID,
			Team:            p.Team,
			PlayerID:        p.PlayerID,
			PlayerName:      p.PlayerName,
			OutsRecorded:    p.OutsRecorded,
			HitsAllowed:     p.HitsAllowed,
			RunsAllowed:     p.RunsAllowed,
			EarnedRuns:      p.EarnedRuns,
			HomeRunsAllowed: p.HomeRunsAllowed,
			Walks:           p.Walks,
			Strikeouts:      p.Strikeouts,
			ERA:             parseStat(p.ERA),
		})
	}
	return lines
}

// parseStat parses a provider-formatted stat like ".312" or "2.45".
// Unparseable values are dropped rather than failing the row.
func parseStat(s *string) *decimal.Decimal {
	if s == nil || *s == "" {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil
	}
	return &d
}
