// Package animation implements the play/slider state of the interactive
// dashboard: a circular frame counter with a playing flag.
package animation

import (
	"fmt"
	"time"
)

// DefaultTickInterval is the period between automatic frame advances.
const DefaultTickInterval = 2 * time.Second

// Action names a controller transition.
type Action string

const (
	ActionPlay  Action = "play"
	ActionPause Action = "pause"
	ActionTick  Action = "tick"
	ActionSeek  Action = "seek"
)

// State is a read-only view of a controller.
type State struct {
	Index   int  `json:"index"`
	Count   int  `json:"count"`
	Playing bool `json:"playing"`
}

// Controller tracks the current frame index over a fixed number of frames.
// It has a single writer and is not safe for concurrent use.
type Controller struct {
	index   int
	count   int
	playing bool
}

// New returns a paused controller over count frames positioned at start.
func New(count, start int) (*Controller, error) {
	if count <= 0 {
		return nil, ErrNoFrames
	}
	if start < 0 || start >= count {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, start, count)
	}
	return &Controller{index: start, count: count}, nil
}

// Play starts automatic advancing.
func (c *Controller) Play() { c.playing = true }

// Pause stops automatic advancing. The index is kept.
func (c *Controller) Pause() { c.playing = false }

// Tick advances one frame when playing, wrapping to 0 after the last one.
// It reports whether the index moved.
func (c *Controller) Tick() bool {
	if !c.playing {
		return false
	}
	c.index = (c.index + 1) % c.count
	return true
}

// Seek jumps to index i without touching the playing flag.
func (c *Controller) Seek(i int) error {
	if i < 0 || i >= c.count {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, c.count)
	}
	c.index = i
	return nil
}

// Apply runs the named transition. index is only used by ActionSeek.
func (c *Controller) Apply(a Action, index int) error {
	switch a {
	case ActionPlay:
		c.Play()
	case ActionPause:
		c.Pause()
	case ActionTick:
		c.Tick()
	case ActionSeek:
		return c.Seek(index)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	return nil
}

// Index returns the current frame index.
func (c *Controller) Index() int { return c.index }

// Playing reports whether the controller advances on tick.
func (c *Controller) Playing() bool { return c.playing }

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	return State{Index: c.index, Count: c.count, Playing: c.playing}
}
