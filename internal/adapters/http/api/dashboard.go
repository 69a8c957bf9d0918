// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"net/http"

	"github.com/okian/wuimap/internal/domain/types"
)

// PageProvider returns the dashboard page settings.
type PageProvider interface {
	Page() types.Page
}

// DashboardHandler serves the interactive map page.
type DashboardHandler struct {
	pages PageProvider
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(pages PageProvider) *DashboardHandler {
	return &DashboardHandler{pages: pages}
}

// HandleDashboard handles GET / requests. The page fetches /figure.json
// for the base layout and drives a session through /api/sessions.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, h.pages.Page()); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
