package repository

import "errors"

// Sentinel kinds for session store errors.
var (
	ErrNotFound      = errors.New("session not found")
	ErrNilController = errors.New("session needs a controller")
	ErrStoreFull     = errors.New("session limit reached")
)
