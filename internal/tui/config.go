package tui

import (
	"time"

	"github.com/Veraticus/kopeck/internal/model"
	"github.com/Veraticus/kopeck/internal/tui/themes"
)

// Config holds dashboard configuration.
type Config struct {
	Month    time.Time
	Theme    themes.Theme
	Width    int
	Height   int
	TopLimit int
}

// Option is a functional option for configuring the dashboard.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Month:    model.MonthStart(time.Now()),
		Theme:    themes.Default,
		Width:    100,
		Height:   30,
		TopLimit: 10,
	}
}

// WithMonth sets the month shown first.
func WithMonth(month time.Time) Option {
	return func(c *Config) {
		c.Month = model.MonthStart(month)
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithTopLimit sets how many expense categories are listed.
func WithTopLimit(limit int) Option {
	return func(c *Config) {
		if limit > 0 {
			c.TopLimit = limit
		}
	}
}
