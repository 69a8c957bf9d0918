// Package repository keeps the per-viewer animation sessions of the dashboard.
package repository

import (
	"context"

	"github.com/okian/wuimap/internal/domain/animation"
)

// Store holds animation controllers keyed by session id. Implementations
// serialise every transition on a given session.
type Store interface {
	// Create registers ctrl under a fresh id and returns the id with the
	// initial state.
	Create(ctx context.Context, ctrl *animation.Controller) (string, animation.State, error)

	// Get returns the current state of a session.
	// Returns ErrNotFound if the id is unknown or expired.
	Get(ctx context.Context, id string) (animation.State, error)

	// Update runs fn against the session's controller while holding the
	// session exclusively, and returns the resulting state.
	Update(ctx context.Context, id string, fn func(*animation.Controller) error) (animation.State, error)

	// Delete drops a session.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
