package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/models"
)

// PostgresBattingRepository implements BattingRepository for PostgreSQL
type PostgresBattingRepository struct {
	db *database.DB
}

// NewPostgresBattingRepository creates a new batting line repository
func NewPostgresBattingRepository(db *database.DB) BattingRepository {
	return &PostgresBattingRepository{db: db}
}

// MergeAbsent inserts batting lines whose (game_id, team, player_id) keys
// are absent from the destination. Runs inside the caller's transaction.
func (r *PostgresBattingRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.BattingLine) (int, error) {
	query := `
		INSERT INTO batting_lines (game_id, team, player_id, player_name, at_bats, runs, hits, doubles, triples, home_runs, rbi, walks, strikeouts, average, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM batting_lines WHERE game_id = $1 AND team = $2 AND player_id = $3
		)
	`

	inserted := 0
	for _, l := range lines {
		tag, err := tx.Exec(ctx, query,
			l.GameID, l.Team, l.PlayerID, l.PlayerName,
			l.AtBats, l.Runs, l.Hits, l.Doubles, l.Triples, l.HomeRuns,
			l.RBI, l.Walks, l.Strikeouts, l.Average,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to merge batting line %s: %w", BattingKey(l), err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ExistingKeys reports which of the given lines already have a stored row
func (r *PostgresBattingRepository) ExistingKeys(ctx context.Context, lines []*models.BattingLine) (map[string]bool, error) {
	existing := make(map[string]bool, len(lines))
	if len(lines) == 0 {
		return existing, nil
	}

	gameIDs := make([]string, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.GameID] {
			seen[l.GameID] = true
			gameIDs = append(gameIDs, l.GameID)
		}
	}

	query := `SELECT game_id, team, player_id FROM batting_lines WHERE game_id = ANY($1)`
	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing batting keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.BattingLine{}
		if err := rows.Scan(&line.GameID, &line.Team, &line.PlayerID); err != nil {
			return nil, fmt.Errorf("failed to scan batting key: %w", err)
		}
		existing[BattingKey(line)] = true
	}

	return existing, rows.Err()
}

