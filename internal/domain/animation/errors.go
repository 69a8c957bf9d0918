package animation

import "errors"

// Sentinel kinds for controller errors.
var (
	ErrNoFrames        = errors.New("controller needs at least one frame")
	ErrIndexOutOfRange = errors.New("frame index out of range")
	ErrUnknownAction   = errors.New("unknown controller action")
)
