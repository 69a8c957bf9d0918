// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// ExportFilename is the download name of GET /export.
const ExportFilename = "wui_animation.html"

// FigureDependencies defines the figure and export operations.
type FigureDependencies interface {
	FigureJSON(ctx context.Context) ([]byte, error)
	RenderExport(ctx context.Context, w io.Writer) error
}

// FigureHandler serves the composed figure and the static export.
type FigureHandler struct {
	deps FigureDependencies
}

// NewFigureHandler creates a new figure handler.
func NewFigureHandler(deps FigureDependencies) *FigureHandler {
	return &FigureHandler{deps: deps}
}

// HandleFigure handles GET /figure.json requests.
func (h *FigureHandler) HandleFigure(w http.ResponseWriter, r *http.Request) {
	raw, err := h.deps.FigureJSON(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// HandleExport handles GET /export requests with the standalone HTML page.
func (h *FigureHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.deps.RenderExport(r.Context(), &buf); err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
