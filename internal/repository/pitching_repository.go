package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/models"
)

// PostgresPitchingRepository implements PitchingRepository for PostgreSQL
type PostgresPitchingRepository struct {
	db *database.DB
}

// NewPostgresPitchingRepository creates a new pitching line repository
func NewPostgresPitchingRepository(db *database.DB) PitchingRepository {
	return &PostgresPitchingRepository{db: db}
}

// MergeAbsent inserts pitching lines whose (game_id, team, player_id) keys
// are absent from the destination. Runs inside the caller's transaction.
func (r *PostgresPitchingRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.PitchingLine) (int, error) {
	query := `
		INSERT INTO pitching_lines (game_id, team, player_id, player_name, outs_recorded, hits_allowed, runs_allowed, earned_runs, home_runs_allowed, walks, strikeouts, era, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW()
		WHERE NOT EXISTS (
			SELECT 1 FROM pitching_lines WHERE game_id = $1 AND team = $2 AND player_id = $3
		)
	`

	inserted := 0
	for _, l := range lines {
		tag, err := tx.Exec(ctx, query,
			l.GameID, l.Team, l.PlayerID, l.PlayerName,
			l.OutsRecorded, l.HitsAllowed, l.RunsAllowed, l.EarnedRuns, l.HomeRunsAllowed,
			l.Walks, l.Strikeouts, l.ERA,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to merge pitching line %s: %w", PitchingKey(l), err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ExistingKeys reports which of the given lines already have a stored row
func (r *PostgresPitchingRepository) ExistingKeys(ctx context.Context, lines []*models.PitchingLine) (map[string]bool, error) {
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

	query := `SELECT game_id, team, player_id FROM pitching_lines WHERE game_id = ANY($1)`
	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing pitching keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.PitchingLine{}
		if err := rows.Scan(&line.GameID, &line.Team, &line.PlayerID); err != nil {
			return nil, fmt.Errorf("failed to scan pitching key: %w", err)
		}
		existing[PitchingKey(line)] = true
	}

	return existing, rows.Err()
}

