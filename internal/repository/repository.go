package repository

import (
	"fmt"

	"github.com/yourusername/ballpark-live/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game     GameRepository
	Batting  BattingRepository
	Pitching PitchingRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:     NewPostgresGameRepository(db),
		Batting:  NewPostgresBattingRepository(db),
		Pitching: NewPostgresPitchingRepository(db),
	}, nil
}
