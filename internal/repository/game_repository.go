package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/models"
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// MergeAbsent inserts games whose keys are absent from the destination.
// The insert-select-where-not-exists form keeps re-ingestion idempotent:
// rows with existing keys are never touched.
func (r *PostgresGameRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, games []*models.Game) (int, error) {
	query := `
		INSERT INTO games (game_id, league, game_date, home_team, away_team, home_score, away_score, venue, innings, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()
		WHERE NOT EXISTS (SELECT 1 FROM games WHERE game_id = $1)
	`

	inserted := 0
	for _, g := range games {
		tag, err := tx.Exec(ctx, query,
			g.GameID, g.League, g.Date, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore, g.Venue, g.Innings,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to merge game %s: %w", g.GameID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ExistingIDs reports which of the given game ids already exist
func (r *PostgresGameRepository) ExistingIDs(ctx context.Context, gameIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(gameIDs))
	if len(gameIDs) == 0 {
		return existing, nil
	}

	query := `SELECT game_id FROM games WHERE game_id = ANY($1)`
	rows, err := r.db.GetPool().Query(ctx, query, gameIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing game ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		existing[id] = true
	}

	return existing, rows.Err()
}

