// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// ChartDependencies defines the country chart operation.
type ChartDependencies interface {
	CountryChart(ctx context.Context, w io.Writer, code string) (int64, error)
}

// ChartHandler serves per-country history charts.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleChart handles GET /api/countries/{code}/chart.png requests.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.deps.CountryChart(r.Context(), &buf, r.PathValue("code")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
