package archive

import "github.com/okian/wuimap/pkg/logger"

// Option applies a configuration option to the Archive.
type Option func(*Archive)

// WithBatchSize sets how many rows go into one INSERT.
func WithBatchSize(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithLogger sets the archive logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.log = l
		}
	}
}
