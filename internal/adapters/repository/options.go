package repository

import (
	"time"

	"github.com/okian/wuimap/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithTTL sets how long a session may stay idle before it is swept.
// Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithSweepInterval sets how often idle sessions are evicted.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithMaxSessions caps the number of live sessions. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(s *MemoryStore) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
