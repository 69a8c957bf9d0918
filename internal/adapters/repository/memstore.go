package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/wuimap/internal/domain/animation"
	"github.com/okian/wuimap/pkg/logger"
	"github.com/okian/wuimap/pkg/metrics"
)

const (
	defaultTTL           = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

type session struct {
	ctrl     *animation.Controller
	lastSeen time.Time
}

// MemoryStore is an in-process Store. A single mutex guards the map and
// every controller, so transitions on one session never interleave.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	ttl           time.Duration
	sweepInterval time.Duration
	maxSessions   int
	now           func() time.Time
	log           logger.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store and starts the idle-session sweeper, which
// stops when ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		sessions:      make(map[string]*session),
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		log:           logger.Nop(),
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.ttl > 0 {
		s.startSweeper(ctx)
	}
	metrics.UpdateSessionsActive(0)
	return s
}

func (s *MemoryStore) startSweeper(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.log.Debug(ctx, "swept idle sessions", logger.Int("count", n))
				}
			}
		}
	}()
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Create implements Store.Create.
func (s *MemoryStore) Create(_ context.Context, ctrl *animation.Controller) (string, animation.State, error) {
	if ctrl == nil {
		return "", animation.State{}, ErrNilController
	}
	id := uuid.NewString()

	s.mu.Lock()
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.mu.Unlock()
		return "", animation.State{}, ErrStoreFull
	}
	s.sessions[id] = &session{ctrl: ctrl, lastSeen: s.now()}
	count := len(s.sessions)
	state := ctrl.State()
	s.mu.Unlock()

	metrics.RecordSessionCreated()
	metrics.UpdateSessionsActive(count)
	return id, state, nil
}

// Get implements Store.Get. Reading a session counts as activity.
func (s *MemoryStore) Get(_ context.Context, id string) (animation.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return animation.State{}, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.ctrl.State(), nil
}

// Update implements Store.Update. fn's error is returned unchanged and the
// state reflects whatever fn managed to apply.
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*animation.Controller) error) (animation.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.live(id)
	if !ok {
		return animation.State{}, ErrNotFound
	}
	sess.lastSeen = s.now()
	err := fn(sess.ctrl)
	return sess.ctrl.State(), err
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	metrics.UpdateSessionsActive(count)
	return nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (s *MemoryStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		metrics.RecordSessionsExpired(removed)
		metrics.UpdateSessionsActive(count)
	}
	return removed
}

// live returns a session that has not yet passed its TTL. Caller holds mu.
func (s *MemoryStore) live(id string) (*session, bool) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(sess.lastSeen) > s.ttl {
		return nil, false
	}
	return sess, true
}
