// Package config defines process configuration and its loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and WUI_* env vars on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"time"
)

// Run modes.
const (
	ModeServe  = "serve"
	ModeExport = "export"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Mode is what the bare command runs: serve or export.
	Mode string `koanf:"mode"`

	// Addr configures the HTTP listen address.
	Addr string `koanf:"addr"`

	// DatasetPath points at the .xlsx workbook.
	DatasetPath string `koanf:"dataset_path"`
	// Sheet is the worksheet holding the monthly index.
	Sheet string `koanf:"sheet"`
	// DateColumn is the header of the date column.
	DateColumn string `koanf:"date_column"`

	// OutputPath is where export writes the HTML document.
	OutputPath string `koanf:"output_path"`

	Title      string `koanf:"title"`
	SourceText string `koanf:"source_text"`

	// InitialFrame is "first" or "last".
	InitialFrame  string  `koanf:"initial_frame"`
	LabelX        float64 `koanf:"label_x"`
	LabelY        float64 `koanf:"label_y"`
	LabelFontSize int     `koanf:"label_font_size"`

	// ColorCap saturates the color scale above this value.
	ColorCap     float64 `koanf:"color_cap"`
	ColorScale   string  `koanf:"color_scale"`
	ReverseScale bool    `koanf:"reverse_scale"`
	Projection   string  `koanf:"projection"`

	// Autoplay starts the exported animation on load.
	Autoplay bool `koanf:"autoplay"`

	FrameDurationMS      int    `koanf:"frame_duration_ms"`
	TransitionDurationMS int    `koanf:"transition_duration_ms"`
	Easing               string `koanf:"easing"`

	// TickIntervalMS is the dashboard play period.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// MonthOrder is "sorted" or "source".
	MonthOrder string `koanf:"month_order"`
	// MissingValues is "absent" or "neutral".
	MissingValues string  `koanf:"missing_values"`
	NeutralValue  float64 `koanf:"neutral_value"`

	// PlotlyJSURL is the script the rendered pages load Plotly from.
	PlotlyJSURL string `koanf:"plotly_js_url"`

	// SessionTTLSeconds evicts idle dashboard sessions.
	SessionTTLSeconds int `koanf:"session_ttl_s"`
	// MaxSessions caps live dashboard sessions; zero means unlimited.
	MaxSessions int `koanf:"max_sessions"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsRefreshSeconds is the system gauge refresh period.
	MetricsRefreshSeconds int `koanf:"metrics_refresh_s"`

	// RecordsDB, when set, archives the long-form records to SQLite.
	RecordsDB string `koanf:"records_db"`
}

// New creates a Config with defaults matching the published animation.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Mode:                  ModeServe,
		Addr:                  "0.0.0.0:8000",
		DatasetPath:           "WUI M Dataset Apr 2025.xlsx",
		Sheet:                 "T1",
		DateColumn:            "date",
		OutputPath:            "wui_animation.html",
		Title:                 "IMF World Uncertainty Index by Country",
		SourceText:            "Source: https://worlduncertaintyindex.com/",
		InitialFrame:          "last",
		LabelX:                0.5,
		LabelY:                0.15,
		LabelFontSize:         36,
		ColorCap:              1.3,
		ColorScale:            "RdYlBu",
		ReverseScale:          true,
		Projection:            "natural earth",
		Autoplay:              false,
		FrameDurationMS:       2000,
		TransitionDurationMS:  1000,
		Easing:                "cubic-in-out",
		TickIntervalMS:        2000,
		MonthOrder:            "sorted",
		MissingValues:         "absent",
		NeutralValue:          0,
		PlotlyJSURL:           "https://cdn.plot.ly/plotly-2.35.2.min.js",
		SessionTTLSeconds:     1800,
		MaxSessions:           10000,
		MetricsEnabled:        true,
		MetricsRefreshSeconds: 10,
	}
}

// FrameDuration returns the per-frame hold time.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.FrameDurationMS) * time.Millisecond
}

// TransitionDuration returns the frame transition time.
func (c *Config) TransitionDuration() time.Duration {
	return time.Duration(c.TransitionDurationMS) * time.Millisecond
}

// TickInterval returns the dashboard play period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// MetricsRefresh returns the system gauge refresh period.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshSeconds) * time.Second
}

// SessionTTL returns the idle timeout of dashboard sessions.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}
