package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/database"
	"github.com/yourusername/ballpark-live/internal/datasource"
	"github.com/yourusername/ballpark-live/internal/metrics"
	"github.com/yourusername/ballpark-live/internal/models"
	"github.com/yourusername/ballpark-live/internal/repository"
)

// Mode selects how far a backfill run goes
type Mode string

const (
	// ModeValidate fetches and validates only, no duplicate detection
	ModeValidate Mode = "validate"
	// ModeDryRun additionally counts would-be inserts without writing
	ModeDryRun Mode = "dry-run"
	// ModeApply performs the merge inside one transaction
	ModeApply Mode = "apply"
)

// ErrNoAdmissibleGames is returned when every fetched game fails validation
var ErrNoAdmissibleGames = errors.New("no games passed validation")

// TableCounts holds per-table insert/duplicate counts for one run
type TableCounts struct {
	Games    int `json:"games"`
	Batting  int `json:"batting"`
	Pitching int `json:"pitching"`
}

// Result summarizes one backfill invocation
type Result struct {
	Year          int         `json:"year"`
	Month         int         `json:"month"`
	Mode          Mode        `json:"mode"`
	GamesFetched  int         `json:"games_fetched"`
	GamesAdmitted int         `json:"games_admitted"`
	GamesRejected int         `json:"games_rejected"`
	Inserted      TableCounts `json:"inserted"`
	Duplicates    TableCounts `json:"duplicates"`
	AuditDir      string      `json:"audit_dir,omitempty"`
	Duration      float64     `json:"duration_seconds"`
}

// Pipeline runs the monthly backfill: fetch, validate, anti-join merge
type Pipeline struct {
	source    datasource.DataSource
	validator *Validator
	audit     *AuditWriter
	db        *database.DB
	repos     *repository.Repositories
	logger    *logrus.Logger
	now       func() time.Time
}

// NewPipeline creates a backfill pipeline. db and repos may be nil for
// validate-only use.
func NewPipeline(source datasource.DataSource, audit *AuditWriter, db *database.DB, repos *repository.Repositories, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		source:    source,
		validator: NewValidator(),
		audit:     audit,
		db:        db,
		repos:     repos,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one month's backfill in the given mode
func (p *Pipeline) Run(ctx context.Context, year int, month time.Month, mode Mode) (*Result, error) {
	start := p.now()
	result := &Result{Year: year, Month: int(month), Mode: mode}

	p.logger.WithFields(logrus.Fields{
		"year":   year,
		"month":  int(month),
		"mode":   mode,
		"source": p.source.Name(),
	}).Info("Starting backfill")

	data, err := p.source.FetchMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	result.GamesFetched = len(data.Games)

	admitted, reports := p.validate(data)
	result.GamesAdmitted = len(admitted)
	result.GamesRejected = result.GamesFetched - result.GamesAdmitted

	if p.audit != nil {
		dir, err := p.audit.Write(start, year, month, reports)
		if err != nil {
			return nil, fmt.Errorf("audit write failed: %w", err)
		}
		result.AuditDir = dir
	}

	if mode != ModeValidate {
		if len(admitted) == 0 {
			result.Duration = p.now().Sub(start).Seconds()
			return result, ErrNoAdmissibleGames
		}
		if err := p.merge(ctx, admitted, mode, result); err != nil {
			return nil, err
		}
	}

	result.Duration = p.now().Sub(start).Seconds()
	metrics.RecordBackfillDuration(result.Duration)

	p.logger.WithFields(logrus.Fields{
		"fetched":        result.GamesFetched,
		"admitted":       result.GamesAdmitted,
		"rejected":       result.GamesRejected,
		"inserted_games": result.Inserted.Games,
	}).Info("Backfill finished")

	return result, nil
}

// validate runs the gate over every fetched game and splits out the
// admissible ones
func (p *Pipeline) validate(data *datasource.MonthData) ([]*datasource.GameData, []*GameReport) {
	var admitted []*datasource.GameData
	reports := make([]*GameReport, 0, len(data.Games))

	for i := range data.Games {
		game := &data.Games[i]
		report := p.validator.ValidateGame(game)
		reports = append(reports, report)

		for _, f := range report.Findings {
			metrics.RecordFinding(string(f.Severity))
		}

		if report.Admissible() {
			admitted = append(admitted, game)
		} else {
			metrics.RecordRejectedGame()
			p.logger.WithFields(logrus.Fields{
				"game_id": game.SourceID,
				"errors":  report.ErrorCount(),
			}).Warn("Game rejected by validation")
		}
	}

	return admitted, reports
}

// merge performs duplicate detection and, in apply mode, the single-
// transaction anti-join insert across all three tables
func (p *Pipeline) merge(ctx context.Context, admitted []*datasource.GameData, mode Mode, result *Result) error {
	if p.repos == nil {
		return fmt.Errorf("repositories are required for %s mode", mode)
	}

	games := make([]*models.Game, 0, len(admitted))
	var batting []*models.BattingLine
	var pitching []*models.PitchingLine
	for _, g := range admitted {
		games = append(games, convertGame(g))
		batting = append(batting, convertBatting(g)...)
		pitching = append(pitching, convertPitching(g)...)
	}

	if mode == ModeDryRun {
		return p.dryRun(ctx, games, batting, pitching, result)
	}

	if p.db == nil {
		return fmt.Errorf("database is required for %s mode", mode)
	}
	err := p.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		n, err := p.repos.Game.MergeAbsent(ctx, tx, games)
		if err != nil {
			return err
		}
		result.Inserted.Games = n

		n, err = p.repos.Batting.MergeAbsent(ctx, tx, batting)
		if err != nil {
			return err
		}
		result.Inserted.Batting = n

		n, err = p.repos.Pitching.MergeAbsent(ctx, tx, pitching)
		if err != nil {
			return err
		}
		result.Inserted.Pitching = n
		return nil
	})
	if err != nil {
		return fmt.Errorf("merge transaction failed, month rolled back: %w", err)
	}

	result.Duplicates.Games = len(games) - result.Inserted.Games
	result.Duplicates.Batting = len(batting) - result.Inserted.Batting
	result.Duplicates.Pitching = len(pitching) - result.Inserted.Pitching

	metrics.RecordMergedRows("games", result.Inserted.Games)
	metrics.RecordMergedRows("batting_lines", result.Inserted.Batting)
	metrics.RecordMergedRows("pitching_lines", result.Inserted.Pitching)

	return nil
}

// dryRun performs the same duplicate detection as a real merge without
// opening a write transaction
func (p *Pipeline) dryRun(ctx context.Context, games []*models.Game, batting []*models.BattingLine, pitching []*models.PitchingLine, result *Result) error {
	gameIDs := make([]string, len(games))
	for i, g := range games {
		gameIDs[i] = g.GameID
	}
	existingGames, err := p.repos.Game.ExistingIDs(ctx, gameIDs)
	if err != nil {
		return fmt.Errorf("dry-run duplicate check failed: %w", err)
	}
	for _, g := range games {
		if existingGames[g.GameID] {
			result.Duplicates.Games++
		} else {
			result.Inserted.Games++
		}
	}

	existingBatting, err := p.repos.Batting.ExistingKeys(ctx, batting)
	if err != nil {
		return fmt.Errorf("dry-run duplicate check failed: %w", err)
	}
	for _, l := range batting {
		if existingBatting[repository.BattingKey(l)] {
			result.Duplicates.Batting++
		} else {
			result.Inserted.Batting++
		}
	}

	existingPitching, err := p.repos.Pitching.ExistingKeys(ctx, pitching)
	if err != nil {
		return fmt.Errorf("dry-run duplicate check failed: %w", err)
	}
	for _, l := range pitching {
		if existingPitching[repository.PitchingKey(l)] {
			result.Duplicates.Pitching++
		} else {
			result.Inserted.Pitching++
		}
	}

	return nil
}
