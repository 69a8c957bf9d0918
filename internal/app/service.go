// Package service runs the load, reshape and frame pipeline once at startup
// and serves the results to the export command and the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/wuimap/internal/adapters/archive"
	"github.com/okian/wuimap/internal/adapters/chart"
	"github.com/okian/wuimap/internal/adapters/loader"
	"github.com/okian/wuimap/internal/adapters/render"
	"github.com/okian/wuimap/internal/adapters/repository"
	"github.com/okian/wuimap/internal/config"
	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/internal/domain/figure"
	"github.com/okian/wuimap/internal/domain/frames"
	"github.com/okian/wuimap/internal/domain/model"
	"github.com/okian/wuimap/internal/domain/reshape"
	"github.com/okian/wuimap/internal/domain/types"
	"github.com/okian/wuimap/pkg/logger"
	"github.com/okian/wuimap/pkg/metrics"
)

// Pipeline stage names used for latency metrics.
const (
	stageLoad    = "load"
	stageReshape = "reshape"
	stageFrames  = "frames"
	stageFigure  = "figure"
	stageArchive = "archive"
)

// Service holds the dataset, frames and figure for the process lifetime.
type Service struct {
	mu sync.RWMutex

	cfg   *config.Config
	table *model.WideTable

	// Built once by Start and never mutated afterwards.
	dataset  model.Dataset
	seq      frames.Sequence
	fig      figure.Figure
	figJSON  []byte
	opts     frames.Options
	style    figure.Style
	months   []string
	sessions *repository.MemoryStore

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithTable supplies an already loaded table instead of reading the
// configured workbook.
func WithTable(t model.WideTable) Option {
	return func(s *Service) {
		s.table = &t
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cfg: config.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildOptions maps the configuration onto frame builder options and figure
// style.
func BuildOptions(cfg *config.Config) (frames.Options, figure.Style, error) {
	initial, err := frames.ParseInitialFrame(cfg.InitialFrame)
	if err != nil {
		return frames.Options{}, figure.Style{}, err
	}
	missing, err := frames.ParseMissingPolicy(cfg.MissingValues)
	if err != nil {
		return frames.Options{}, figure.Style{}, err
	}
	order, err := reshape.ParseMonthOrder(cfg.MonthOrder)
	if err != nil {
		return frames.Options{}, figure.Style{}, err
	}

	opts := frames.Options{
		InitialFrame:  initial,
		LabelPosition: frames.Position{X: cfg.LabelX, Y: cfg.LabelY},
		LabelFontSize: cfg.LabelFontSize,
		ColorCap:      cfg.ColorCap,
		Autoplay:      cfg.Autoplay,
		MonthOrder:    order,
		Missing:       missing,
		NeutralValue:  cfg.NeutralValue,
	}

	if _, err := figure.ColorStops(cfg.ColorScale); err != nil {
		return frames.Options{}, figure.Style{}, err
	}

	style := figure.DefaultStyle()
	style.Title = cfg.Title
	style.SourceText = cfg.SourceText
	style.Projection = cfg.Projection
	style.ColorScale = cfg.ColorScale
	style.ReverseScale = cfg.ReverseScale
	style.FrameDuration = cfg.FrameDuration()
	style.TransitionDuration = cfg.TransitionDuration()
	style.Easing = cfg.Easing
	return opts, style, nil
}

// Start loads the workbook and builds every frame. Any failure is returned
// wrapped and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting uncertainty map service...",
		logger.String("dataset", s.cfg.DatasetPath),
		logger.String("sheet", s.cfg.Sheet),
	)

	opts, style, err := BuildOptions(s.cfg)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}

	table, err := s.loadTable(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}

	start := time.Now()
	ds := reshape.Melt(table)
	months := reshape.Months(ds, opts.MonthOrder)
	metrics.RecordStageLatency(stageReshape, time.Since(start))
	metrics.UpdateDataset(ds.Len(), len(ds.Countries), len(months))

	start = time.Now()
	seq, err := frames.Build(ds, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	metrics.RecordStageLatency(stageFrames, time.Since(start))
	metrics.UpdateFramesBuilt(seq.Len())

	start = time.Now()
	fig := figure.Compose(seq, style)
	raw, err := render.FigureJSON(fig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPipeline, err)
	}
	metrics.RecordStageLatency(stageFigure, time.Since(start))

	if s.cfg.RecordsDB != "" {
		if err := s.archive(ctx, ds); err != nil {
			return err
		}
	}

	s.dataset = ds
	s.months = months
	s.seq = seq
	s.fig = fig
	s.figJSON = raw
	s.opts = opts
	s.style = style
	s.sessions = repository.NewMemoryStore(ctx,
		repository.WithTTL(s.cfg.SessionTTL()),
		repository.WithMaxSessions(s.cfg.MaxSessions),
		repository.WithLogger(s.logger.Named("sessions")),
	)
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "uncertainty map service started",
		logger.Int("records", ds.Len()),
		logger.Int("countries", len(ds.Countries)),
		logger.Int("frames", seq.Len()),
		logger.Float64("scaleMin", seq.Scale.Min),
		logger.Float64("scaleMax", seq.Scale.Max),
		logger.String("initialMonth", seq.InitialFrame().Month),
	)
	return nil
}

func (s *Service) loadTable(ctx context.Context) (model.WideTable, error) {
	if s.table != nil {
		return *s.table, nil
	}
	start := time.Now()
	l := loader.New(
		loader.WithSheet(s.cfg.Sheet),
		loader.WithDateColumn(s.cfg.DateColumn),
		loader.WithLogger(s.logger.Named("loader")),
	)
	table, err := l.Load(ctx, s.cfg.DatasetPath)
	if err != nil {
		return model.WideTable{}, err
	}
	metrics.RecordStageLatency(stageLoad, time.Since(start))
	return table, nil
}

func (s *Service) archive(ctx context.Context, ds model.Dataset) error {
	start := time.Now()
	a, err := archive.Open(s.cfg.RecordsDB, archive.WithLogger(s.logger.Named("archive")))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer func() { _ = a.Close() }()

	if _, err := a.Save(ctx, ds); err != nil {
		return fmt.Errorf("%w: %w", ErrArchive, err)
	}
	metrics.RecordStageLatency(stageArchive, time.Since(start))
	return nil
}

// Stop releases the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if s.sessions != nil {
		_ = s.sessions.Close()
	}
	s.started = false
	s.logger.Info(context.Background(), "uncertainty map service stopped")
}

// ready reports ErrNotStarted until Start has succeeded.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Figure returns the composed figure.
func (s *Service) Figure() (figure.Figure, error) {
	if err := s.ready(); err != nil {
		return figure.Figure{}, err
	}
	return s.fig, nil
}

// FigureJSON returns the encoded figure.
func (s *Service) FigureJSON(_ context.Context) ([]byte, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.figJSON, nil
}

// Sequence returns the built frames.
func (s *Service) Sequence() (frames.Sequence, error) {
	if err := s.ready(); err != nil {
		return frames.Sequence{}, err
	}
	return s.seq, nil
}

// Frame returns the view of frame i.
func (s *Service) Frame(_ context.Context, i int) (types.Frame, error) {
	if err := s.ready(); err != nil {
		return types.Frame{}, err
	}
	f, err := s.seq.At(i)
	if err != nil {
		return types.Frame{}, err
	}
	metrics.RecordFrameServed(f.Month)
	return types.NewFrame(i, f, s.opts, s.style), nil
}

// Document returns the export document for the built figure.
func (s *Service) Document() (render.Document, error) {
	if err := s.ready(); err != nil {
		return render.Document{}, err
	}
	return render.Document{
		Title:       s.cfg.Title,
		Footer:      s.cfg.SourceText,
		PlotlyJSURL: s.cfg.PlotlyJSURL,
		Autoplay:    s.opts.Autoplay,
		Figure:      s.fig,
	}, nil
}

// Export writes the static HTML document to path.
func (s *Service) Export(ctx context.Context, path string) (int, error) {
	doc, err := s.Document()
	if err != nil {
		return 0, err
	}
	n, err := render.WriteFile(path, doc)
	if err != nil {
		return 0, err
	}
	metrics.RecordExport("file", n)
	s.logger.Info(ctx, "animation exported",
		logger.String("path", path),
		logger.Int("bytes", n),
		logger.Bool("autoplay", doc.Autoplay),
	)
	return n, nil
}

// RenderExport writes the static HTML document to w.
func (s *Service) RenderExport(_ context.Context, w io.Writer) error {
	doc, err := s.Document()
	if err != nil {
		return err
	}
	cw := &countingWriter{w: w}
	if err := render.HTML(cw, doc); err != nil {
		return err
	}
	metrics.RecordExport("http", cw.n)
	return nil
}

// Page returns the dashboard page settings.
func (s *Service) Page() types.Page {
	return types.Page{
		Title:          "IMF Uncertainty Index",
		Footer:         s.cfg.SourceText,
		PlotlyJSURL:    s.cfg.PlotlyJSURL,
		TickIntervalMS: s.cfg.TickIntervalMS,
	}
}

// CreateSession starts a paused controller on the initial frame.
func (s *Service) CreateSession(ctx context.Context) (types.Session, error) {
	if err := s.ready(); err != nil {
		return types.Session{}, err
	}
	ctrl, err := animation.New(s.seq.Len(), s.seq.Initial)
	if err != nil {
		return types.Session{}, err
	}
	id, state, err := s.sessions.Create(ctx, ctrl)
	if err != nil {
		return types.Session{}, err
	}
	s.logger.Debug(ctx, "session created", logger.String("session", id), logger.Int("index", state.Index))
	return s.sessionView(ctx, id, state)
}

// Session returns the current state of a session and its frame.
func (s *Service) Session(ctx context.Context, id string) (types.Session, error) {
	if err := s.ready(); err != nil {
		return types.Session{}, err
	}
	state, err := s.sessions.Get(ctx, id)
	if err != nil {
		return types.Session{}, err
	}
	return s.sessionView(ctx, id, state)
}

// Transition applies action to a session and returns the recomputed frame.
// index is only read for animation.ActionSeek.
func (s *Service) Transition(ctx context.Context, id string, action animation.Action, index int) (types.Session, error) {
	if err := s.ready(); err != nil {
		return types.Session{}, err
	}
	state, err := s.sessions.Update(ctx, id, func(c *animation.Controller) error {
		return c.Apply(action, index)
	})
	if err != nil {
		return types.Session{}, err
	}
	metrics.RecordTransition(string(action))
	return s.sessionView(ctx, id, state)
}

func (s *Service) sessionView(ctx context.Context, id string, state animation.State) (types.Session, error) {
	f, err := s.Frame(ctx, state.Index)
	if err != nil {
		return types.Session{}, err
	}
	return types.Session{ID: id, State: state, Frame: f}, nil
}

// CountryChart writes a PNG of one country's series to w.
func (s *Service) CountryChart(_ context.Context, w io.Writer, code string) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return chart.Country(w, s.dataset, code, s.seq.Scale)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
		"dataset": s.cfg.DatasetPath,
		"sheet":   s.cfg.Sheet,
	}
	if !s.started {
		return stats
	}

	sessions := s.sessions.Count(context.Background())
	stats["records"] = s.dataset.Len()
	stats["countries"] = len(s.dataset.Countries)
	stats["months"] = len(s.months)
	stats["frames"] = s.seq.Len()
	stats["initialIndex"] = s.seq.Initial
	stats["initialMonth"] = s.seq.InitialFrame().Month
	stats["scale"] = s.seq.Scale
	stats["sessions"] = sessions
	stats["uptimeSeconds"] = int(time.Since(s.startedAt).Seconds())

	metrics.UpdateSessionsActive(sessions)
	return stats
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
