package datasource

import (
	"context"
	"errors"
	"time"
)

// DataSource defines the interface for fetching finished-game box scores
// from external stat providers
type DataSource interface {
	// FetchMonth retrieves every finished game of the given calendar month
	// together with its batting and pitching lines
	FetchMonth(ctx context.Context, year int, month time.Month) (*MonthData, error)

	// FetchGame retrieves a single game's box score
	FetchGame(ctx context.Context, gameID string) (*GameData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// MonthData holds one month of normalized box scores from any data source
type MonthData struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	Games     []GameData `json:"games"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// GameData represents one normalized finished game from any data source
type GameData struct {
	SourceID  string         `json:"source_id"` // provider's unique game ID
	League    string         `json:"league"`    // NPB, MLB or KBO
	Date      time.Time      `json:"date"`      // local game date
	HomeTeam  string         `json:"home_team"`
	AwayTeam  string         `json:"away_team"`
	HomeScore int            `json:"home_score"`
	AwayScore int            `json:"away_score"`
	Venue     *string        `json:"venue"`
	Innings   int            `json:"innings"` // innings actually played
	Batting   []BattingData  `json:"batting"`
	Pitching  []PitchingData `json:"pitching"`
}

// BattingData represents one player's batting line as published by the source
type BattingData struct {
	Team       string  `json:"team"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	AtBats     int     `json:"at_bats"`
	Runs       int     `json:"runs"`
	Hits       int     `json:"hits"`
	Doubles    int     `json:"doubles"`
	Triples    int     `json:"triples"`
	HomeRuns   int     `json:"home_runs"`
	RBI        int     `json:"rbi"`
	Walks      int     `json:"walks"`
	Strikeouts int     `json:"strikeouts"`
	Average    *string `json:"average"` // season AVG, provider formatting
}

// PitchingData represents one pitcher's line as published by the source
type PitchingData struct {
	Team            string  `json:"team"`
	PlayerID        string  `json:"player_id"`
	PlayerName      string  `json:"player_name"`
	OutsRecorded    int     `json:"outs_recorded"`
	HitsAllowed     int     `json:"hits_allowed"`
	RunsAllowed     int     `json:"runs_allowed"`
	EarnedRuns      int     `json:"earned_runs"`
	HomeRunsAllowed int     `json:"home_runs_allowed"`
	Walks           int     `json:"walks"`
	Strikeouts      int     `json:"strikeouts"`
	ERA             *string `json:"era"` // season ERA, provider formatting
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeDisabled             = "source_disabled"
)

var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
