package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/cart"
	"github.com/vitrina/backend/internal/domain/catalog"
)

// Session is one visitor's storefront state: the products of their last
// catalog load and their cart. All operations on a session run under its
// mutex, one at a time.
type Session struct {
	ID       string
	Registry *catalog.Registry

	mu     sync.Mutex
	ledger *cart.Ledger

	// unix nanoseconds; kept off mu so the manager never waits on a
	// session that is busy with a catalog fetch
	lastSeen atomic.Int64
}

func newSession(id string, ledger *cart.Ledger, now time.Time) *Session {
	s := &Session{
		ID:       id,
		Registry: catalog.NewRegistry(),
		ledger:   ledger,
	}
	s.touch(now)
	return s
}

// Do runs fn with exclusive access to the session's ledger
func (s *Session) Do(fn func(l *cart.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ledger)
}

// Exclusive runs fn under the session lock, for work on the registry that
// must not interleave with cart operations
func (s *Session) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// SessionManager keeps open sessions in memory and hydrates carts from the
// snapshot store when a session is first opened
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    cart.SnapshotStore
	logger   *zap.Logger
	idleTTL  time.Duration
	now      func() time.Time

	stopChan  chan struct{}
	stopOnce  sync.Once
	sweepOnce sync.Once
}

// DefaultIdleTTL is how long an untouched session stays in memory
const DefaultIdleTTL = 30 * time.Minute

// NewSessionManager creates a new SessionManager
func NewSessionManager(store cart.SnapshotStore, logger *zap.Logger, idleTTL time.Duration) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		store:    store,
		logger:   logger,
		idleTTL:  idleTTL,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// NewSessionID returns a fresh opaque session id
func NewSessionID() string {
	return uuid.NewString()
}

// Open returns the session for id, creating and hydrating it if needed.
// An empty id opens a brand new session. A corrupt stored cart is discarded
// and the session starts empty; only a failing store read is an error.
// The snapshot read runs outside the manager lock. When two requests race to
// open the same id, the first one to register its session wins.
func (m *SessionManager) Open(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = NewSessionID()
	}

	if s, ok := m.lookup(id); ok {
		s.touch(m.now())
		return s, nil
	}

	data, found, err := m.store.Get(ctx, cart.SnapshotKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read cart snapshot: %w", err)
	}

	ledger := cart.NewLedger()
	if found {
		var discarded error
		ledger, discarded = cart.Hydrate(data)
		if discarded != nil {
			m.logger.Warn("Discarded unreadable cart snapshot",
				zap.String("session_id", id),
				zap.Error(discarded),
			)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if s, ok := m.sessions[id]; ok {
		s.touch(now)
		return s, nil
	}
	s := newSession(id, ledger, now)
	m.sessions[id] = s
	m.logger.Debug("Session opened",
		zap.String("session_id", id),
		zap.Int("cart_lines", ledger.Len()),
	)
	return s, nil
}

func (m *SessionManager) lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of sessions held in memory
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Their carts stay in the snapshot store.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Debug("Evicted idle sessions", zap.Int("count", evicted), zap.Int("remaining", len(m.sessions)))
	}
	return evicted
}

// StartSweeper runs Sweep periodically until ctx is done or Stop is called.
// It is non-blocking and only starts once.
func (m *SessionManager) StartSweeper(ctx context.Context, interval time.Duration) {
	m.sweepOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go m.runSweeper(ctx, interval)
	})
}

func (m *SessionManager) runSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Stop stops the sweeper
func (m *SessionManager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}
