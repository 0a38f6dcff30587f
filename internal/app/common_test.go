package app

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quietshelf/unhook/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "console"},
		Journal: config.JournalConfig{FlushInterval: "30s"},
		Stats:   config.StatsConfig{PreferReal: true},
		Reset:   config.ResetConfig{Time: "03:00", RetryBackoff: "5m"},
	}
}

func TestDataDir_RespectsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_DATA_HOME", base)

	dir, err := dataDir()
	if err != nil {
		t.Fatalf("dataDir() failed: %v", err)
	}
	if dir != filepath.Join(base, "unhook") {
		t.Errorf("dataDir() = %s; want %s", dir, filepath.Join(base, "unhook"))
	}
}

func TestStateDir_RespectsXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_STATE_HOME", base)

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir() failed: %v", err)
	}
	if !strings.HasSuffix(dir, "unhook") {
		t.Errorf("stateDir() = %s; want unhook suffix", dir)
	}
}

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	oldCfgPath := cfgPath
	cfgPath = ""
	defer func() { cfgPath = oldCfgPath }()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if cfg.Reset.Time != "03:00" {
		t.Errorf("default reset time = %s; want 03:00", cfg.Reset.Time)
	}
}

func TestBuildLogger_Levels(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Level = "debug"

	logger := buildLogger(cfg)
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("logger level = %v; want debug", logger.GetLevel())
	}

	cfg.Logging.Level = "bogus"
	logger = buildLogger(cfg)
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("logger level for bad config = %v; want info fallback", logger.GetLevel())
	}
}
