package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/ballpark-live/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// Stats API data source type
	StatsAPISourceType SourceType = "stats_api"
	// Local archive data source type
	ArchiveSourceType SourceType = "archive"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewDataSource creates a new DataSource based on the provided configuration
func (f *Factory) NewDataSource(cfg config.DataSourceConfig, httpClient *RateLimitedHTTPClient) (DataSource, error) {
	switch SourceType(cfg.Name) {
	case StatsAPISourceType:
		if httpClient == nil {
			return nil, fmt.Errorf("HTTP client is required for %s", cfg.Name)
		}
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("stats API key is required")
		}
		return NewStatsAPIClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.League, cfg.Enabled, f.logger), nil

	case ArchiveSourceType:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("archive directory is required")
		}
		return NewArchiveClient(cfg.Dir, cfg.League, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// NewDataSources creates all enabled data sources from configuration
func (f *Factory) NewDataSources(cfgs []config.DataSourceConfig, httpClient *RateLimitedHTTPClient) ([]DataSource, error) {
	var sources []DataSource

	for _, srcCfg := range cfgs {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Info("Skipping disabled data source")
			continue
		}

		source, err := f.NewDataSource(srcCfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}

		sources = append(sources, source)
		f.logger.WithField("source", srcCfg.Name).Info("Created data source")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}
