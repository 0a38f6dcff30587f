package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/aggregator"
	"github.com/quietshelf/unhook/internal/config"
	"github.com/quietshelf/unhook/internal/journal"
	"github.com/quietshelf/unhook/internal/prefs"
	"github.com/quietshelf/unhook/internal/recorder"
	"github.com/quietshelf/unhook/internal/store"
)

// dataDir returns the unhook data directory, respecting XDG_DATA_HOME.
// Defaults to ~/.local/share/unhook.
func dataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(base, "unhook")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// stateDir returns the unhook state directory (PID file, daemon log, journal),
// respecting XDG_STATE_HOME. Defaults to ~/.local/state/unhook.
func stateDir() (string, error) {
	base := os.Getenv("XDG_STATE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "state")
	}

	dir := filepath.Join(base, "unhook")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create state directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the database path: the --db flag, then the config file,
// then the default under the data directory.
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	cfg, err := loadConfig()
	if err == nil && cfg.Database != "" {
		return cfg.Database, nil
	}

	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "unhook.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// defaultJournalPath returns the journal path used when the config leaves it
// empty.
func defaultJournalPath() (string, error) {
	dir, err := stateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "events.log"), nil
}

// loadConfig loads the configuration from the --config flag or the default
// location.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.NewManager(path).Load()
}

// buildLogger creates the zerolog logger per the logging config.
func buildLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Logging.Format == "json" {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

// openStore opens the database and ensures the schema exists.
func openStore() (*store.Store, error) {
	path, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}

	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// journalPath resolves the journal file location from config.
func journalPath(cfg *config.Config) (string, error) {
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path, nil
	}
	return defaultJournalPath()
}

// buildRecorder wires a Recorder from the store and config: app preferences,
// logger, and the journal-backed foreground source when the journal is
// enabled.
func buildRecorder(st *store.Store, cfg *config.Config) *recorder.Recorder {
	source := prefs.New(cfg.Apps.Essential, cfg.Apps.Limited)
	opts := []recorder.Option{recorder.WithLogger(buildLogger(cfg))}
	if cfg.Journal.Enabled {
		opts = append(opts, recorder.WithForegroundSource(journal.NewStoreSource(st, true)))
	}
	return recorder.New(st, source, opts...)
}

// buildAggregator wires an Aggregator over the journal-backed event source.
func buildAggregator(st *store.Store, cfg *config.Config, preferReal bool) *aggregator.Aggregator {
	src := journal.NewStoreSource(st, cfg.Journal.Enabled)
	return aggregator.New(src, preferReal, aggregator.WithLogger(buildLogger(cfg)))
}
