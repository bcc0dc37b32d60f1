package calculator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type session struct {
	mu       sync.Mutex
	engine   *Engine
	lastUsed time.Time
	// removed is set under mu once the session leaves the map.
	removed bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMaxSessions bounds the number of live sessions. Zero means unbounded.
func WithMaxSessions(n int) StoreOption {
	return func(s *Store) { s.maxSessions = n }
}

// WithIdleTTL sets how long an untouched session survives a Sweep. Zero
// disables expiry.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithEvictHook is called after a sweep with the number of expired sessions.
func WithEvictHook(fn func(n int)) StoreOption {
	return func(s *Store) { s.onEvict = fn }
}

// Store keeps one Engine per on-screen calculator.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time
	onEvict     func(n int)
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session in the initial state.
func (s *Store) Create() (string, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return "", State{}, fmt.Errorf("create session: %w", ErrStoreFull)
	}

	id := uuid.NewString()
	sess := &session{engine: NewEngine(), lastUsed: s.now()}
	s.sessions[id] = sess
	return id, sess.engine.State(), nil
}

func (s *Store) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// acquire returns the session with its mutex held.
func (s *Store) acquire(id string) (*session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := lockLive(id, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// lockLive locks sess unless a Delete or Sweep removed it after lookup.
func lockLive(id string, sess *session) error {
	sess.mu.Lock()
	if sess.removed {
		sess.mu.Unlock()
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return nil
}

// Get returns a snapshot of a session.
func (s *Store) Get(id string) (State, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return State{}, err
	}
	defer sess.mu.Unlock()
	return sess.engine.State(), nil
}

// Update runs fn with exclusive access to the session's engine and returns
// the resulting state.
func (s *Store) Update(id string, fn func(*Engine)) (State, error) {
	sess, err := s.acquire(id)
	if err != nil {
		return State{}, err
	}
	defer sess.mu.Unlock()

	fn(sess.engine)
	sess.lastUsed = s.now()
	return sess.engine.State(), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	sess.mu.Lock()
	sess.removed = true
	sess.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastUsed.Before(cutoff)
		if idle {
			sess.removed = true
		}
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 && s.onEvict != nil {
		s.onEvict(removed)
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
