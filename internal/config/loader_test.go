package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/wuimap/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"WUI_CONFIG", "WUI_ADDR", "WUI_COLOR_CAP", "WUI_INITIAL_FRAME", "WUI_AUTOPLAY",
	"WUI_SHEET", "WUI_LABEL_FONT_SIZE", "WUI_MODE", "WUI_TICK_INTERVAL_MS", "WUI_MAX_SESSIONS",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "wui.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, "0.0.0.0:8000")
				convey.So(cfg.ColorCap, convey.ShouldEqual, 1.3)
				convey.So(cfg.Mode, convey.ShouldEqual, config.ModeServe)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("WUI_ADDR", ":9000")
			_ = os.Setenv("WUI_COLOR_CAP", "2.5")
			_ = os.Setenv("WUI_INITIAL_FRAME", "first")
			_ = os.Setenv("WUI_AUTOPLAY", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.ColorCap, convey.ShouldEqual, 2.5)
				convey.So(cfg.InitialFrame, convey.ShouldEqual, "first")
				convey.So(cfg.Autoplay, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := createTempConfigFile(t, `
sheet: "T2"
color_cap: 1.8
label_x: 0.2
label_y: 0.9
month_order: source
`)
			_ = os.Setenv("WUI_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values merge with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Sheet, convey.ShouldEqual, "T2")
				convey.So(cfg.ColorCap, convey.ShouldEqual, 1.8)
				convey.So(cfg.LabelX, convey.ShouldEqual, 0.2)
				convey.So(cfg.LabelY, convey.ShouldEqual, 0.9)
				convey.So(cfg.MonthOrder, convey.ShouldEqual, "source")
				convey.So(cfg.DateColumn, convey.ShouldEqual, "date")
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			path := createTempConfigFile(t, "sheet: T2\naddr: \":7000\"\n")
			_ = os.Setenv("WUI_CONFIG", path)
			_ = os.Setenv("WUI_SHEET", "T3")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Sheet, convey.ShouldEqual, "T3")
				convey.So(cfg.Addr, convey.ShouldEqual, ":7000")
			})
		})

		convey.Convey("When the YAML file is invalid", func() {
			path := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("WUI_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("WUI_CONFIG", "/non/existent/wui.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("WUI_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the mode is unknown", func() {
			_ = os.Setenv("WUI_MODE", "print")

			_, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When numeric environment variables are invalid", func() {
			_ = os.Setenv("WUI_LABEL_FONT_SIZE", "huge")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the tick interval is zero", func() {
			_ = os.Setenv("WUI_TICK_INTERVAL_MS", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the session limit is set from the environment", func() {
			_ = os.Setenv("WUI_MAX_SESSIONS", "50")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it overrides the default", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the session limit is negative", func() {
			_ = os.Setenv("WUI_MAX_SESSIONS", "-1")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
