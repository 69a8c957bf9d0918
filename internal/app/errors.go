package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrPipeline   = errors.New("build pipeline failed")
	ErrArchive    = errors.New("archive records failed")
)
