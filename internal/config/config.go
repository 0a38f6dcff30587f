// Package config provides configuration loading for unhook.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Database string        `mapstructure:"database"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Journal  JournalConfig `mapstructure:"journal"`
	Apps     AppsConfig    `mapstructure:"apps"`
	Stats    StatsConfig   `mapstructure:"stats"`
	Reset    ResetConfig   `mapstructure:"reset"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JournalConfig defines the foreground-event journal settings. The journal is
// the launcher-side log of app foreground/background transitions; when it is
// disabled the statistics views fall back to simulated data.
type JournalConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	FlushInterval string `mapstructure:"flush_interval"`
}

// AppsConfig partitions tracked packages into essential and limited sets.
// Essential apps are always exempt from cooldown; limited apps are gated.
type AppsConfig struct {
	Essential []string `mapstructure:"essential"`
	Limited   []string `mapstructure:"limited"`
}

// StatsConfig defines statistics behavior.
type StatsConfig struct {
	PreferReal bool `mapstructure:"prefer_real"`
}

// ResetConfig defines the daily cooldown reset schedule.
type ResetConfig struct {
	Time         string `mapstructure:"time"`          // HH:MM local time
	RetryBackoff string `mapstructure:"retry_backoff"` // duration string
}

// Dir returns the unhook config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/unhook if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "unhook"), nil
}

// DefaultPath returns the default config file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Manager loads the configuration file and republishes it on change.
type Manager struct {
	v    *viper.Viper
	path string
}

// NewManager creates a Manager for the given config file path.
func NewManager(path string) *Manager {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("UNHOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{v: v, path: path}
}

// Load reads the config file and returns the parsed configuration.
// A missing config file is not an error; defaults and environment apply.
func (m *Manager) Load() (*Config, error) {
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// OnChange watches the config file and invokes fn with the freshly parsed
// configuration whenever it changes. Reload errors are reported to onErr and
// the previous configuration stays in effect.
func (m *Manager) OnChange(fn func(*Config), onErr func(error)) {
	m.v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := m.Load()
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(cfg)
	})
	m.v.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "")
	v.SetDefault("journal.flush_interval", "30s")
	v.SetDefault("apps.essential", []string{})
	v.SetDefault("apps.limited", []string{})
	v.SetDefault("stats.prefer_real", true)
	v.SetDefault("reset.time", "03:00")
	v.SetDefault("reset.retry_backoff", "5m")
}

func validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", cfg.Logging.Level)
	}

	// An app listed in both sets would make the cooldown decision ambiguous.
	essential := make(map[string]bool, len(cfg.Apps.Essential))
	for _, pkg := range cfg.Apps.Essential {
		essential[pkg] = true
	}
	for _, pkg := range cfg.Apps.Limited {
		if essential[pkg] {
			return fmt.Errorf("package %s is listed as both essential and limited", pkg)
		}
	}

	return nil
}
