package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/wuimap/internal/adapters/http/api"
	"github.com/okian/wuimap/internal/adapters/http/swagger"
	app "github.com/okian/wuimap/internal/app"
	"github.com/okian/wuimap/internal/config"
	"github.com/okian/wuimap/pkg/logger"
	"github.com/okian/wuimap/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 30 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// flags holds command line overrides. Only flags the user set are applied.
type flags struct {
	configPath    string
	dataset       string
	sheet         string
	logLevel      string
	initialFrame  string
	monthOrder    string
	missingValues string
	colorCap      float64
	recordsDB     string
	addr          string
	out           string
	autoplay      bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "wui",
		Short: "Animated choropleth of the World Uncertainty Index",
		Long: `wui loads the monthly World Uncertainty Index workbook and turns it into an
animated world map, either as a standalone HTML file or as a live dashboard.

Configuration is read from defaults, then the YAML file named by WUI_CONFIG
(or --config), then WUI_* environment variables, then flags.

Examples:
  wui                                   # run the configured mode (serve by default)
  wui serve --addr :8000                # start the dashboard
  wui export --out wui_animation.html   # write the static animation
  wui export --initial-frame first      # open the export on the first month`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if cfg.Mode == config.ModeExport {
				return runExport(cmd.Context(), cfg)
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file (overrides "+config.EnvFile+")")
	pf.StringVar(&f.dataset, "dataset", "", "path to the .xlsx workbook")
	pf.StringVar(&f.sheet, "sheet", "", "worksheet holding the monthly index")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.initialFrame, "initial-frame", "", "frame shown first (first, last)")
	pf.StringVar(&f.monthOrder, "month-order", "", "frame order (sorted, source)")
	pf.StringVar(&f.missingValues, "missing-values", "", "missing country-months (absent, neutral)")
	pf.Float64Var(&f.colorCap, "color-cap", 0, "upper bound of the color scale")
	pf.StringVar(&f.recordsDB, "records-db", "", "SQLite file to archive long-form records into")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&f.addr, "addr", "", "listen address")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the animated map as a standalone HTML file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), cfg)
		},
	}
	export.Flags().StringVarP(&f.out, "out", "o", "", "output HTML path")
	export.Flags().BoolVar(&f.autoplay, "autoplay", false, "start the animation when the page opens")

	root.AddCommand(serve, export)
	return root
}

// loadConfig layers flag overrides on top of config.Load and sets up logging.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	if f.configPath != "" {
		if err := os.Setenv(config.EnvFile, f.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("dataset") {
		cfg.DatasetPath = f.dataset
	}
	if changed("sheet") {
		cfg.Sheet = f.sheet
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("initial-frame") {
		cfg.InitialFrame = f.initialFrame
	}
	if changed("month-order") {
		cfg.MonthOrder = f.monthOrder
	}
	if changed("missing-values") {
		cfg.MissingValues = f.missingValues
	}
	if changed("color-cap") {
		cfg.ColorCap = f.colorCap
	}
	if changed("records-db") {
		cfg.RecordsDB = f.recordsDB
	}
	if changed("addr") {
		cfg.Addr = f.addr
	}
	if changed("out") {
		cfg.OutputPath = f.out
	}
	if changed("autoplay") {
		cfg.Autoplay = f.autoplay
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(cfg.MetricsEnabled, cfg.MetricsRefresh())
	return cfg, nil
}

func startService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	svc := app.New(
		app.WithConfig(cfg),
		app.WithLogger(logger.Named("service")),
	)
	if err := svc.Start(ctx); err != nil {
		logger.Get().Error(ctx, "failed to start service", logger.Error(err))
		return nil, err
	}
	return svc, nil
}

func runExport(ctx context.Context, cfg *config.Config) error {
	svc, err := startService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	if _, err := svc.Export(ctx, cfg.OutputPath); err != nil {
		logger.Get().Error(ctx, "export failed", logger.String("path", cfg.OutputPath), logger.Error(err))
		return err
	}
	return nil
}

func newHTTPServer(addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(context.Background(), mux)
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := startService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	srv := newHTTPServer(cfg.Addr, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or a listener failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			return err
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
