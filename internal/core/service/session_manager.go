package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

const restoreTimeout = 10 * time.Second

type managedSession struct {
	session  *Session
	restore  sync.Once
	lastSeen time.Time
}

// SessionManager owns the Session of every browser session seen by this
// process. A session is restored from the token store exactly once, on first
// access.
type SessionManager struct {
	api       ports.WalletAPI
	store     ports.TokenStore
	listeners []Listener
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*managedSession
}

// NewSessionManager returns a SessionManager. Every listener is attached to
// each session it creates.
func NewSessionManager(api ports.WalletAPI, store ports.TokenStore, log zerolog.Logger, listeners ...Listener) *SessionManager {
	return &SessionManager{
		api:       api,
		store:     store,
		listeners: listeners,
		log:       log,
		now:       time.Now,
		sessions:  make(map[string]*managedSession),
	}
}

// Get satisfies ports.SessionResolver.
func (m *SessionManager) Get(ctx context.Context, sessionID string) ports.SessionService {
	return m.Session(ctx, sessionID)
}

// Session returns the session for sessionID, creating and restoring it on
// first use.
func (m *SessionManager) Session(ctx context.Context, sessionID string) *Session {
	m.mu.Lock()
	entry, ok := m.sessions[sessionID]
	if !ok {
		sess := NewSession(sessionID, m.api, m.store, m.log)
		for _, l := range m.listeners {
			sess.Subscribe(l)
		}
		entry = &managedSession{session: sess}
		m.sessions[sessionID] = entry
	}
	entry.lastSeen = m.now()
	m.mu.Unlock()

	entry.restore.Do(func() {
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		entry.session.RestoreOnStartup(restoreCtx)
	})
	return entry.session
}

// Forget drops the in-memory session. The persisted token is untouched; a
// logged out session has already deleted it.
func (m *SessionManager) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len returns the number of sessions held in memory.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle drops sessions not accessed within idle and returns how many were
// removed. Evicted sessions are restored again on their next request.
func (m *SessionManager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartJanitor evicts idle sessions every interval until ctx is cancelled.
func (m *SessionManager) StartJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.EvictIdle(idle); n > 0 {
				m.log.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		case <-ctx.Done():
			return
		}
	}
}
