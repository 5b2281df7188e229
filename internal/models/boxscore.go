package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BattingLine represents one player's batting line within a game
type BattingLine struct {
	GameID     string           `db:"game_id" json:"game_id" validate:"required"`
	Team       string           `db:"team" json:"team" validate:"required"`
	PlayerID   string           `db:"player_id" json:"player_id" validate:"required"`
	PlayerName string           `db:"player_name" json:"player_name"`
	AtBats     int              `db:"at_bats" json:"at_bats" validate:"gte=0"`
	Runs       int              `db:"runs" json:"runs" validate:"gte=0"`
	Hits       int              `db:"hits" json:"hits" validate:"gte=0"`
	Doubles    int              `db:"doubles" json:"doubles" validate:"gte=0"`
	Triples    int              `db:"triples" json:"triples" validate:"gte=0"`
	HomeRuns   int              `db:"home_runs" json:"home_runs" validate:"gte=0"`
	RBI        int              `db:"rbi" json:"rbi" validate:"gte=0"`
	Walks      int              `db:"walks" json:"walks" validate:"gte=0"`
	Strikeouts int              `db:"strikeouts" json:"strikeouts" validate:"gte=0"`
	Average    *decimal.Decimal `db:"average" json:"average,omitempty"` // season AVG as published by the source
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// Singles computes singles as hits minus extra-base hits. May be negative
// on inconsistent source data, which the validation gate flags.
func (b *BattingLine) Singles() int {
	return b.Hits - b.Doubles - b.Triples - b.HomeRuns
}

// PitchingLine represents one pitcher's line within a game
type PitchingLine struct {
	GameID          string           `db:"game_id" json:"game_id" validate:"required"`
	Team            string           `db:"team" json:"team" validate:"required"`
	PlayerID        string           `db:"player_id" json:"player_id" validate:"required"`
	PlayerName      string           `db:"player_name" json:"player_name"`
	OutsRecorded    int              `db:"outs_recorded" json:"outs_recorded" validate:"gte=0"` // IP stored as outs to avoid .1/.2 notation
	HitsAllowed     int              `db:"hits_allowed" json:"hits_allowed" validate:"gte=0"`
	RunsAllowed     int              `db:"runs_allowed" json:"runs_allowed" validate:"gte=0"`
	EarnedRuns      int              `db:"earned_runs" json:"earned_runs" validate:"gte=0"`
	HomeRunsAllowed int              `db:"home_runs_allowed" json:"home_runs_allowed" validate:"gte=0"`
	Walks           int              `db:"walks" json:"walks" validate:"gte=0"`
	Strikeouts      int              `db:"strikeouts" json:"strikeouts" validate:"gte=0"`
	ERA             *decimal.Decimal `db:"era" json:"era,omitempty"` // season ERA as published by the source
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
}

// InningsPitched renders outs recorded in conventional x.y notation
func (p *PitchingLine) InningsPitched() decimal.Decimal {
	whole := decimal.NewFromInt(int64(p.OutsRecorded / 3))
	frac := decimal.NewFromInt(int64(p.OutsRecorded % 3)).Div(decimal.NewFromInt(10))
	return whole.Add(frac)
}
