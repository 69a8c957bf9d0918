// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/wuimap/internal/adapters/chart"
	"github.com/okian/wuimap/internal/adapters/repository"
	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/internal/domain/frames"
	"github.com/okian/wuimap/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FigureDependencies
	FrameDependencies
	SessionDependencies
	ChartDependencies

	// Page returns the dashboard page settings.
	Page() types.Page
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	figureHandler    *FigureHandler
	frameHandler     *FrameHandler
	sessionHandler   *SessionHandler
	chartHandler     *ChartHandler
	dashboardHandler *DashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		figureHandler:    NewFigureHandler(deps),
		frameHandler:     NewFrameHandler(deps),
		sessionHandler:   NewSessionHandler(deps),
		chartHandler:     NewChartHandler(deps),
		dashboardHandler: NewDashboardHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /figure.json", MetricsMiddleware(s.figureHandler.HandleFigure, "figure"))
	mux.HandleFunc("GET /export", MetricsMiddleware(s.figureHandler.HandleExport, "export"))
	mux.HandleFunc("GET /api/frames/{index}", MetricsMiddleware(s.frameHandler.HandleGetFrame, "frames"))
	mux.HandleFunc("POST /api/sessions", MetricsMiddleware(s.sessionHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /api/sessions/{id}", MetricsMiddleware(s.sessionHandler.HandleGet, "sessions"))
	mux.HandleFunc("POST /api/sessions/{id}/{action}", MetricsMiddleware(s.sessionHandler.HandleTransition, "transitions"))
	mux.HandleFunc("GET /api/countries/{code}/chart.png", MetricsMiddleware(s.chartHandler.HandleChart, "chart"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream sentinels into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, frames.ErrFrameIndex),
		errors.Is(err, chart.ErrUnknownCountry):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, animation.ErrIndexOutOfRange),
		errors.Is(err, animation.ErrUnknownAction),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, repository.ErrStoreFull):
		writeError(w, http.StatusTooManyRequests, "too_many_sessions", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON reads an optional JSON body into v. An empty body is not an
// error.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
