package frames

import "errors"

// Sentinel kinds for frame building errors.
var (
	ErrEmptyDataset   = errors.New("dataset has no records")
	ErrInvalidScale   = errors.New("color cap must exceed the minimum observed value")
	ErrInvalidOptions = errors.New("invalid frame options")
	ErrFrameIndex     = errors.New("frame index out of range")
)
