// Package config provides configuration management for the Ballpark Live services.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	LiveParams LiveParamsConfig `mapstructure:"live_params"`
	Versioning VersioningConfig `mapstructure:"versioning" validate:"required"`
	Monitor    MonitorConfig    `mapstructure:"monitor" validate:"required"`
	Backfill   BackfillConfig   `mapstructure:"backfill" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Stream     StreamConfig     `mapstructure:"stream"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ServerConfig represents the live-estimate HTTP server configuration
type ServerConfig struct {
	Address             string `mapstructure:"address" validate:"required"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// LiveParamsConfig locates the live parameters file
type LiveParamsConfig struct {
	Path string `mapstructure:"path"`
}

// VersioningConfig represents model/config snapshot storage configuration
type VersioningConfig struct {
	Root           string `mapstructure:"root" validate:"required"`
	LiveConfigPath string `mapstructure:"live_config_path" validate:"required"`
	Keep           int    `mapstructure:"keep" validate:"required,gt=0"`
}

// MonitorConfig represents the auto-rollback monitor configuration
type MonitorConfig struct {
	Enabled                bool    `mapstructure:"enabled"`
	IntervalSeconds        int     `mapstructure:"interval_seconds" validate:"required,gt=0"`
	CooldownSeconds        int     `mapstructure:"cooldown_seconds" validate:"required,gt=0"`
	MaxConsecutiveFailures int     `mapstructure:"max_consecutive_failures" validate:"required,gt=0"`
	LogLossThreshold       float64 `mapstructure:"logloss_threshold" validate:"required,gt=0"`
	BrierThreshold         float64 `mapstructure:"brier_threshold" validate:"required,gt=0"`
	MetricsURL             string  `mapstructure:"metrics_url" validate:"required,url"`
	ReloadURL              string  `mapstructure:"reload_url" validate:"omitempty,url"`
}

// BackfillConfig represents the monthly backfill configuration
type BackfillConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1,dive"`
	Schedule string             `mapstructure:"schedule"` // cron expression; empty disables the scheduled run
	AuditDir string             `mapstructure:"audit_dir" validate:"required"`
}

// DataSourceConfig represents a single box-score provider configuration
type DataSourceConfig struct {
	Name    string `mapstructure:"name" validate:"required"`
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
	League  string `mapstructure:"league" validate:"omitempty,league"`
	Dir     string `mapstructure:"dir"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// StreamConfig represents the websocket estimate stream configuration
type StreamConfig struct {
	Enabled             bool `mapstructure:"enabled"`
	WriteTimeoutSeconds int  `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// SecretsConfig represents the AWS Secrets Manager overlay configuration
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MonitorInterval returns the monitor poll interval as a duration
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSeconds) * time.Second
}

// MonitorCooldown returns the post-rollback cooldown as a duration
func (c *Config) MonitorCooldown() time.Duration {
	return time.Duration(c.Monitor.CooldownSeconds) * time.Second
}
