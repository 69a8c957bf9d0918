// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/internal/domain/types"
)

// SessionDependencies defines the dashboard session operations.
type SessionDependencies interface {
	CreateSession(ctx context.Context) (types.Session, error)
	Session(ctx context.Context, id string) (types.Session, error)
	Transition(ctx context.Context, id string, action animation.Action, index int) (types.Session, error)
}

// SessionHandler drives per-viewer animation controllers.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// seekRequest is the body of POST /api/sessions/{id}/seek.
type seekRequest struct {
	Index *int `json:"index"`
}

// HandleCreate handles POST /api/sessions requests.
func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// HandleGet handles GET /api/sessions/{id} requests.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// HandleTransition handles POST /api/sessions/{id}/{play|pause|tick|seek}.
func (h *SessionHandler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	action := animation.Action(r.PathValue("action"))
	index := 0

	switch action {
	case animation.ActionPlay, animation.ActionPause, animation.ActionTick:
	case animation.ActionSeek:
		var req seekRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		if req.Index == nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing index", ErrBadRequest))
			return
		}
		index = *req.Index
	default:
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("%w: %q", animation.ErrUnknownAction, action))
		return
	}

	sess, err := h.deps.Transition(r.Context(), r.PathValue("id"), action, index)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
