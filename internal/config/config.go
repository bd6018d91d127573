package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/kopeck/internal/common"
)

// Configuration keys.
const (
	KeyDatabasePath        = "database.path"
	KeyLogLevel            = "logging.level"
	KeyLogFormat           = "logging.format"
	KeyTopLimit            = "reports.top_limit"
	KeyListLimit           = "transactions.list_limit"
	KeyKeepAutoCheckpoints = "checkpoints.keep_auto"
)

// Defaults.
const (
	DefaultDatabasePath        = "$HOME/.local/share/kopeck/kopeck.db"
	DefaultTopLimit            = 10
	DefaultListLimit           = 500
	DefaultKeepAutoCheckpoints = 5
)

// Config holds the resolved application settings.
type Config struct {
	DatabasePath        string
	LogLevel            string
	LogFormat           string
	TopLimit            int
	ListLimit           int
	KeepAutoCheckpoints int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTopLimit, DefaultTopLimit)
	v.SetDefault(KeyListLimit, DefaultListLimit)
	v.SetDefault(KeyKeepAutoCheckpoints, DefaultKeepAutoCheckpoints)
}

// Load reads the settings from v, applying defaults for anything unset.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := &Config{
		DatabasePath:        ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:            v.GetString(KeyLogLevel),
		LogFormat:           v.GetString(KeyLogFormat),
		TopLimit:            v.GetInt(KeyTopLimit),
		ListLimit:           v.GetInt(KeyListLimit),
		KeepAutoCheckpoints: v.GetInt(KeyKeepAutoCheckpoints),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if c.DatabasePath != ":memory:" && !filepath.IsAbs(c.DatabasePath) {
		abs, err := filepath.Abs(c.DatabasePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, KeyDatabasePath, err)
		}
		c.DatabasePath = abs
	}
	if c.TopLimit <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyTopLimit, c.TopLimit)
	}
	if c.ListLimit <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, KeyListLimit, c.ListLimit)
	}
	if c.KeepAutoCheckpoints < 0 {
		return fmt.Errorf("%w: %s cannot be negative", common.ErrInvalidConfig, KeyKeepAutoCheckpoints)
	}
	if _, err := common.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json", "console":
	default:
		return fmt.Errorf("%w: %s must be text or json, got %q", common.ErrInvalidConfig, KeyLogFormat, c.LogFormat)
	}
	return nil
}
