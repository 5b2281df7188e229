package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/ballpark-live/internal/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	// MergeAbsent inserts every game whose game_id is not already present,
	// leaving existing rows untouched, and returns the inserted count.
	// It runs inside the caller's transaction.
	MergeAbsent(ctx context.Context, tx pgx.Tx, games []*models.Game) (int, error)
	// ExistingIDs reports which of the given game ids already exist
	ExistingIDs(ctx context.Context, gameIDs []string) (map[string]bool, error)
}

// BattingRepository defines the interface for batting line data access
type BattingRepository interface {
	MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.BattingLine) (int, error)
	ExistingKeys(ctx context.Context, lines []*models.BattingLine) (map[string]bool, error)
}

// PitchingRepository defines the interface for pitching line data access
type PitchingRepository interface {
	MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.PitchingLine) (int, error)
	ExistingKeys(ctx context.Context, lines []*models.PitchingLine) (map[string]bool, error)
}

// BattingKey builds the natural key of a batting line
func BattingKey(l *models.BattingLine) string {
	return l.GameID + "|" + l.Team + "|" + l.PlayerID
}

// PitchingKey builds the natural key of a pitching line
func PitchingKey(l *models.PitchingLine) string {
	return l.GameID + "|" + l.Team + "|" + l.PlayerID
}
