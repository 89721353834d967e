// Package config loads and watches spectrail configuration.
//
// Configuration comes from a TOML file with SPECTRAIL_* environment
// variables layered on top. The history limits support live reload via the
// file watcher.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	History HistoryConfig `toml:"history"`
	Journal JournalConfig `toml:"journal"`
	Logging LoggingConfig `toml:"logging"`
}

// HistoryConfig bounds the undo/redo engine.
type HistoryConfig struct {
	// MaxSteps bounds each session's step log.
	MaxSteps int `toml:"max_steps"`

	// MaxSessions bounds the parked-log table.
	MaxSessions int `toml:"max_sessions"`
}

// JournalConfig configures the persisted edit journal.
type JournalConfig struct {
	// Enabled turns journaling on.
	Enabled bool `toml:"enabled"`

	// Path is the SQLite database location. Empty means the default under
	// the user's home directory.
	Path string `toml:"path"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			MaxSteps:    250,
			MaxSessions: 16,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location
// (~/.spectrail/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".spectrail", "config.toml"), nil
}

// DefaultJournalPath returns the default journal database location.
func DefaultJournalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".spectrail", "journal.db"), nil
}

// Load reads the file at path (missing file is not an error) and applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus env only.
	case err != nil:
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv layers SPECTRAIL_* environment variables over cfg.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("SPECTRAIL_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("SPECTRAIL_JOURNAL_PATH"); ok {
		cfg.Journal.Path = v
	}
	if v, ok := lookupInt("SPECTRAIL_HISTORY_MAX_STEPS"); ok {
		cfg.History.MaxSteps = v
	}
	if v, ok := lookupInt("SPECTRAIL_HISTORY_MAX_SESSIONS"); ok {
		cfg.History.MaxSessions = v
	}
}

func lookupInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c Config) validate() error {
	if c.History.MaxSteps < 0 {
		return fmt.Errorf("history.max_steps must be non-negative, got %d", c.History.MaxSteps)
	}
	if c.History.MaxSessions < 0 {
		return fmt.Errorf("history.max_sessions must be non-negative, got %d", c.History.MaxSessions)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
