// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/wuimap/internal/domain/types"
)

// FrameDependencies defines the frame lookup.
type FrameDependencies interface {
	Frame(ctx context.Context, index int) (types.Frame, error)
}

// FrameHandler serves single frames.
type FrameHandler struct {
	deps FrameDependencies
}

// NewFrameHandler creates a new frame handler.
func NewFrameHandler(deps FrameDependencies) *FrameHandler {
	return &FrameHandler{deps: deps}
}

// HandleGetFrame handles GET /api/frames/{index} requests.
func (h *FrameHandler) HandleGetFrame(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: index must be an integer", ErrBadRequest))
		return
	}
	f, err := h.deps.Frame(r.Context(), index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
