package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "WUI_"
	EnvFile   = "WUI_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if WUI_CONFIG is set
//  3. env (prefix WUI_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// WUI_COLOR_CAP -> color_cap; underscores are kept to match the flat koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The file path itself is not a config key.
	k.Delete("config")

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep in the pipeline.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DatasetPath) == "":
		return fmt.Errorf("%w: dataset_path must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Sheet) == "":
		return fmt.Errorf("%w: sheet must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DateColumn) == "":
		return fmt.Errorf("%w: date_column must not be empty", ErrInvalidConfig)
	case c.Mode != ModeServe && c.Mode != ModeExport:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidConfig, ModeServe, ModeExport, c.Mode)
	case c.LabelFontSize <= 0:
		return fmt.Errorf("%w: label_font_size must be positive", ErrInvalidConfig)
	case c.FrameDurationMS < 0 || c.TransitionDurationMS < 0:
		return fmt.Errorf("%w: animation durations must not be negative", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_s must be positive", ErrInvalidConfig)
	case c.MetricsRefreshSeconds <= 0:
		return fmt.Errorf("%w: metrics_refresh_s must be positive", ErrInvalidConfig)
	case c.MaxSessions < 0:
		return fmt.Errorf("%w: max_sessions must not be negative", ErrInvalidConfig)
	}
	return nil
}
