package archive

import "errors"

// Sentinel kinds for archive errors.
var (
	ErrOpen  = errors.New("open records archive failed")
	ErrSave  = errors.New("save records failed")
	ErrQuery = errors.New("query records failed")
)
