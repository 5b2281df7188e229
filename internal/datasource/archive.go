package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// ArchiveClient implements DataSource over a local directory of monthly
// box-score dumps, one JSON file per month named YYYY-MM.json. Used for
// reprocessing past seasons without hitting the provider.
type ArchiveClient struct {
	dir     string
	league  string
	enabled bool
	logger  *logrus.Logger
}

// NewArchiveClient creates a new archive-backed data source
func NewArchiveClient(dir, league string, enabled bool, logger *logrus.Logger) *ArchiveClient {
	return &ArchiveClient{
		dir:     dir,
		league:  league,
		enabled: enabled,
		logger:  logger,
	}
}

// FetchMonth loads one month of games from the archive directory
func (c *ArchiveClient) FetchMonth(ctx context.Context, year int, month time.Month) (*MonthData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(c.dir, fmt.Sprintf("%04d-%02d.json", year, int(month)))
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, NewDataSourceError(c.Name(), ErrCodeNotFound,
			fmt.Sprintf("no archive file for %04d-%02d", year, int(month)), err)
	}
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to read archive file", err)
	}

	var games []GameData
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to parse archive file", err)
	}

	c.logger.WithFields(logrus.Fields{
		"file":  path,
		"games": len(games),
	}).Debug("Loaded archive month")

	return &MonthData{
		Year:      year,
		Month:     month,
		Games:     games,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchGame scans the archive directory for a game by source id
func (c *ArchiveClient) FetchGame(ctx context.Context, gameID string) (*GameData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.Name(), ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "failed to read archive directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(filepath.Join(c.dir, entry.Name()))
		if err != nil {
			continue
		}
		var games []GameData
		if err := json.Unmarshal(raw, &games); err != nil {
			continue
		}
		for i := range games {
			if games[i].SourceID == gameID {
				return &games[i], nil
			}
		}
	}

	return nil, NewDataSourceError(c.Name(), ErrCodeNotFound, "game not found in archive", nil)
}

// Name returns the data source name
func (c *ArchiveClient) Name() string {
	return "archive"
}

// IsEnabled returns whether this data source is enabled
func (c *ArchiveClient) IsEnabled() bool {
	return c.enabled
}
