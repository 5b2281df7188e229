package models

import (
	"time"
)

// Game represents a completed game record as stored in the primary store
type Game struct {
	GameID    string    `db:"game_id" json:"game_id" validate:"required"`
	League    string    `db:"league" json:"league" validate:"required,oneof=NPB MLB KBO"`
	Date      time.Time `db:"game_date" json:"game_date" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	HomeScore int       `db:"home_score" json:"home_score" validate:"gte=0"`
	AwayScore int       `db:"away_score" json:"away_score" validate:"gte=0"`
	Venue     *string   `db:"venue" json:"venue,omitempty"`
	Innings   int       `db:"innings" json:"innings"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Winner returns the winning team name, or empty string for a tie
func (g *Game) Winner() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam
	default:
		return ""
	}
}
