package ingest

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/models"
	"github.com/yourusername/ballpark-live/internal/repository"
)

// stubSource serves a fixed month of games
type stubSource struct {
	games []datasource.GameData
}

func (s *stubSource) FetchMonth(ctx context.Context, year int, month time.Month) (*datasource.MonthData, error) {
	return &datasource.MonthData{Year: year, Month: month, Games: s.games, FetchedAt: time.Now()}, nil
}

func (s *stubSource) FetchGame(ctx context.Context, gameID string) (*datasource.GameData, error) {
	for i := range s.games {
		if s.games[i].SourceID == gameID {
			return &s.games[i], nil
		}
	}
	return nil, datasource.NewDataSourceError("stub", datasource.ErrCodeNotFound, "not found", nil)
}

func (s *stubSource) Name() string    { return "stub" }
func (s *stubSource) IsEnabled() bool { return true }

// MockGameRepository mocks repository.GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, games []*models.Game) (int, error) {
	args := m.Called(ctx, tx, games)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRepository) ExistingIDs(ctx context.Context, gameIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, gameIDs)
	return args.Get(0).(map[string]bool), args.Error(1)
}

// MockBattingRepository mocks repository.BattingRepository
type MockBattingRepository struct {
	mock.Mock
}

func (m *MockBattingRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.BattingLine) (int, error) {
	args := m.Called(ctx, tx, lines)
	return args.Int(0), args.Error(1)
}

func (m *MockBattingRepository) ExistingKeys(ctx context.Context, lines []*models.BattingLine) (map[string]bool, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(map[string]bool), args.Error(1)
}

// MockPitchingRepository mocks repository.PitchingRepository
type MockPitchingRepository struct {
	mock.Mock
}

func (m *MockPitchingRepository) MergeAbsent(ctx context.Context, tx pgx.Tx, lines []*models.PitchingLine) (int, error) {
	args := m.Called(ctx, tx, lines)
	return args.Int(0), args.Error(1)
}

func (m *MockPitchingRepository) ExistingKeys(ctx context.Context, lines []*models.PitchingLine) (map[string]bool, error) {
	args := m.Called(ctx, lines)
	return args.Get(0).(map[string]bool), args.Error(1)
}

func pipelineTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// TestMonthWithOneBadGame fetches two games where one carries an H > AB
// batting line: exactly one game is admitted, the rejected game's id is
// listed in the summary's error_games.
func TestMonthWithOneBadGame(t *testing.T) {
	good := cleanGame("2026-07-01-HAN-YOG")
	bad := cleanGame("2026-07-02-YOG-HAN")
	bad.Batting[0].AtBats = 4
	bad.Batting[0].Hits = 5

	auditDir := t.TempDir()
	source := &stubSource{games: []datasource.GameData{*good, *bad}}
	pipeline := NewPipeline(source, NewAuditWriter(auditDir, pipelineTestLogger()), nil, nil, pipelineTestLogger())

	result, err := pipeline.Run(context.Background(), 2026, time.July, ModeValidate)
	require.NoError(t, err)

	assert.Equal(t, 2, result.GamesFetched)
	assert.Equal(t, 1, result.GamesAdmitted)
	assert.Equal(t, 1, result.GamesRejected)

	raw, err := os.ReadFile(filepath.Join(result.AuditDir, "validation_summary.json"))
	require.NoError(t, err)
	var summary Summary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, []string{"2026-07-02-YOG-HAN"}, summary.ErrorGames)
}

func TestDryRunCountsDuplicates(t *testing.T) {
	game1 := cleanGame("g1")
	game2 := cleanGame("g2")

	gameRepo := new(MockGameRepository)
	battingRepo := new(MockBattingRepository)
	pitchingRepo := new(MockPitchingRepository)

	gameRepo.On("ExistingIDs", mock.Anything, []string{"g1", "g2"}).
		Return(map[string]bool{"g1": true}, nil)
	battingRepo.On("ExistingKeys", mock.Anything, mock.Anything).
		Return(map[string]bool{"g1|HAN|h1": true, "g1|YOG|a1": true}, nil)
	pitchingRepo.On("ExistingKeys", mock.Anything, mock.Anything).
		Return(map[string]bool{}, nil)

	repos := &repository.Repositories{Game: gameRepo, Batting: battingRepo, Pitching: pitchingRepo}
	source := &stubSource{games: []datasource.GameData{*game1, *game2}}
	pipeline := NewPipeline(source, nil, nil, repos, pipelineTestLogger())

	result, err := pipeline.Run(context.Background(), 2026, time.July, ModeDryRun)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Inserted.Games)
	assert.Equal(t, 1, result.Duplicates.Games)
	assert.Equal(t, 2, result.Inserted.Batting)
	assert.Equal(t, 2, result.Duplicates.Batting)
	assert.Equal(t, 4, result.Inserted.Pitching)
	assert.Equal(t, 0, result.Duplicates.Pitching)

	gameRepo.AssertExpectations(t)
	battingRepo.AssertExpectations(t)
	pitchingRepo.AssertExpectations(t)
}

func TestRunFailsWhenNothingAdmissible(t *testing.T) {
	bad := cleanGame("g-bad")
	bad.Batting[0].AtBats = 2
	bad.Batting[0].Hits = 3

	source := &stubSource{games: []datasource.GameData{*bad}}
	pipeline := NewPipeline(source, nil, nil, &repository.Repositories{}, pipelineTestLogger())

	result, err := pipeline.Run(context.Background(), 2026, time.July, ModeDryRun)
	require.ErrorIs(t, err, ErrNoAdmissibleGames)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.GamesRejected)
}

func TestValidateOnlyNeedsNoDatabase(t *testing.T) {
	source := &stubSource{games: []datasource.GameData{*cleanGame("g1")}}
	pipeline := NewPipeline(source, nil, nil, nil, pipelineTestLogger())

	result, err := pipeline.Run(context.Background(), 2026, time.July, ModeValidate)
	require.NoError(t, err)
	assert.Equal(t, 1, result.GamesAdmitted)
	assert.Zero(t, result.Inserted.Games)
}
