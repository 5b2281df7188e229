package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity classifies a validation finding
type Severity string

const (
	// SeverityError blocks the game from ingestion
	SeverityError Severity = "error"
	// SeverityWarning is recorded in the audit log but does not block ingestion
	SeverityWarning Severity = "warning"
)

// Finding represents a single validation rule violation for a game.
// Findings are generated fresh per validation run and persisted only
// as an audit log.
type Finding struct {
	ID        uuid.UUID              `json:"id"`
	Rule      string                 `json:"rule"`
	Severity  Severity               `json:"severity"`
	GameID    string                 `json:"game_id"`
	Team      string                 `json:"team,omitempty"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewFinding creates a finding with a fresh ID and timestamp
func NewFinding(rule string, severity Severity, gameID string) *Finding {
	return &Finding{
		ID:        uuid.New(),
		Rule:      rule,
		Severity:  severity,
		GameID:    gameID,
		Detail:    make(map[string]interface{}),
		CreatedAt: time.Now().UTC(),
	}
}

// WithTeam attaches the offending team to the finding
func (f *Finding) WithTeam(team string) *Finding {
	f.Team = team
	return f
}

// WithPlayer attaches the offending player to the finding
func (f *Finding) WithPlayer(playerID string) *Finding {
	f.PlayerID = playerID
	return f
}

// WithDetail attaches a diagnostic key/value pair to the finding
func (f *Finding) WithDetail(key string, value interface{}) *Finding {
	f.Detail[key] = value
	return f
}

// IsBlocking reports whether this finding blocks ingestion of its game
func (f *Finding) IsBlocking() bool {
	return f.Severity == SeverityError
}
