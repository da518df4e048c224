// Package config handles Lightbox configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for Lightbox.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Feed settings for the live conversation stream
	Feed FeedConfig `yaml:"feed" mapstructure:"feed"`

	// Viewer settings
	Viewer ViewerConfig `yaml:"viewer" mapstructure:"viewer"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is the base directory for Lightbox data.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is the directory for configuration files.
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeoutMs is the SQLite busy timeout in milliseconds.
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the log format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path. The viewer always logs to a file
	// since stderr belongs to the terminal UI.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// FeedConfig contains settings for the websocket conversation feed.
type FeedConfig struct {
	// URL is the websocket endpoint of the chat gateway. Empty disables
	// the feed; the viewer then shows stored data only.
	URL string `yaml:"url" mapstructure:"url"`

	// ReconnectInterval is the initial delay before a reconnect attempt.
	ReconnectInterval time.Duration `yaml:"reconnect_interval" mapstructure:"reconnect_interval"`

	// MaxBackoff caps the reconnect delay growth.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// ViewerConfig contains terminal viewer settings.
type ViewerConfig struct {
	// PollInterval is how often the viewer re-reads conversation data.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// Theme selects the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// Mouse enables mouse capture for drag paging.
	Mouse bool `yaml:"mouse" mapstructure:"mouse"`

	// ArrowAutoHide is the idle delay before paging arrows fade.
	// Zero keeps them visible.
	ArrowAutoHide time.Duration `yaml:"arrow_auto_hide" mapstructure:"arrow_auto_hide"`

	// PreviewCacheSize is the number of rendered attachment panes kept
	// in the LRU cache.
	PreviewCacheSize int `yaml:"preview_cache_size" mapstructure:"preview_cache_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "lightbox")
	configDir := filepath.Join(homeDir, ".config", "lightbox")

	return &Config{
		Global: GlobalConfig{
			DataDir:   dataDir,
			ConfigDir: configDir,
		},
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, "lightbox.db"),
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dataDir, "lightbox.log"),
		},
		Feed: FeedConfig{
			ReconnectInterval: 2 * time.Second,
			MaxBackoff:        30 * time.Second,
		},
		Viewer: ViewerConfig{
			PollInterval:     2 * time.Second,
			Theme:            "default",
			Mouse:            true,
			ArrowAutoHide:    4 * time.Second,
			PreviewCacheSize: 64,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Global.DataDir == "" {
		return fmt.Errorf("global.data_dir is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.BusyTimeoutMs < 0 {
		return fmt.Errorf("database.busy_timeout_ms must be non-negative")
	}

	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console")
	}

	if c.Feed.ReconnectInterval < 0 {
		return fmt.Errorf("feed.reconnect_interval must be non-negative")
	}
	if c.Feed.MaxBackoff < 0 {
		return fmt.Errorf("feed.max_backoff must be non-negative")
	}

	if c.Viewer.PollInterval <= 0 {
		return fmt.Errorf("viewer.poll_interval must be positive")
	}
	switch c.Viewer.Theme {
	case "default", "high-contrast":
	default:
		return fmt.Errorf("viewer.theme must be default or high-contrast")
	}
	if c.Viewer.ArrowAutoHide < 0 {
		return fmt.Errorf("viewer.arrow_auto_hide must be non-negative")
	}
	if c.Viewer.PreviewCacheSize <= 0 {
		return fmt.Errorf("viewer.preview_cache_size must be positive")
	}

	return nil
}

// EnsureDirectories creates required directories if they don't exist.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
		filepath.Dir(c.Database.Path),
	}
	if c.Logging.File != "" {
		dirs = append(dirs, filepath.Dir(c.Logging.File))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// StatePath returns the path of the persisted viewer-state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.Global.DataDir, "viewer-state.json")
}
