// Package session keeps per-shopper state. Each session owns its cart and
// order ledger; nothing is shared between sessions.
package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"shoplite/internal/models"
	"shoplite/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the mutable state of one session.
type State struct {
	Cart   *models.Cart
	Orders repositories.OrderRepository
}

// Session is one shopper's state. Actions on a session run one at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	state    State
	lastSeen atomic.Int64
}

func newSession(id string, now time.Time) *Session {
	s := &Session{
		ID: id,
		state: State{
			Cart:   models.NewCart(),
			Orders: repositories.NewInMemoryOrderRepository(),
		},
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Store holds the live sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A ttl of zero disables expiry.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the store's time source.
func (st *Store) WithClock(now func() time.Time) *Store {
	st.now = now
	return st
}

// Get returns a live session and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	// touched under the lock: a session returned here survives a concurrent Sweep
	s.touch(st.now())
	return s, true
}

// Create starts a new empty session.
func (st *Store) Create() *Session {
	s := newSession(uuid.New().String(), st.now())

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.logger.Debug("session created", zap.String("session_id", s.ID))
	return s
}

// GetOrCreate returns the session for id, creating a fresh one when id is
// empty or unknown. created reports whether a new session was made.
func (st *Store) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := st.Get(id); ok {
			return s, false
		}
	}
	return st.Create(), true
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the ttl and returns how many
// were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		st.logger.Info("expired idle sessions", zap.Int("removed", removed), zap.Int("live", len(st.sessions)))
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (st *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Sweep()
		}
	}
}
