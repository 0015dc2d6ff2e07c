package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

// Change describes one session state transition delivered to listeners.
type Change struct {
	SessionID string
	From      domain.SessionState
	To        domain.SessionState
	Snapshot  domain.SessionSnapshot
}

// Listener is notified after every session state change.
type Listener func(Change)

// Session is the auth state of one browser session. It is the only writer of
// the identity and of the persisted credential token; pages read snapshots.
type Session struct {
	id    string
	api   ports.WalletAPI
	store ports.TokenStore
	log   zerolog.Logger
	now   func() time.Time

	mu        sync.Mutex
	state     domain.SessionState
	identity  *domain.Identity
	token     string
	listeners map[uint64]Listener
	nextSubID uint64
}

// NewSession returns an empty (Anonymous) session bound to sessionID.
func NewSession(sessionID string, api ports.WalletAPI, store ports.TokenStore, log zerolog.Logger) *Session {
	return &Session{
		id:        sessionID,
		api:       api,
		store:     store,
		log:       log.With().Str("session", shortID(sessionID)).Logger(),
		now:       time.Now,
		state:     domain.StateAnonymous,
		listeners: make(map[uint64]Listener),
	}
}

// Snapshot returns a copy of the current state safe to hand to views.
func (s *Session) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for state change notifications. The returned func
// removes the subscription.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Login authenticates against the backend, persists the returned token and
// loads the identity.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.transition(domain.StateAuthenticating, nil, "")

	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.transition(domain.StateAnonymous, nil, "")
		return fmt.Errorf("login: %w", err)
	}

	if err := s.store.Save(ctx, s.id, token); err != nil {
		s.log.Warn().Err(err).Msg("failed to persist credential token")
	}

	identity, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		s.clear(ctx)
		return fmt.Errorf("login: fetch identity: %w", err)
	}

	s.transition(domain.StateAuthenticated, identity, token)
	s.log.Info().Str("email", identity.Email).Msg("logged in")
	return nil
}

// Register creates a backend account. It does not establish a session.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	user, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info().Str("email", user.Email).Msg("account registered")
	return nil
}

// Logout drops the identity and the persisted token. It never fails and is
// idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.clear(ctx)
}

// Refresh re-fetches the identity with the held token. A rejected or missing
// token clears the session.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	state := s.state
	s.mu.Unlock()

	if token == "" {
		s.clear(ctx)
		return fmt.Errorf("refresh: %w", domain.ErrAuth)
	}
	if state == domain.StateAnonymous {
		s.transition(domain.StateAuthenticating, nil, token)
	}

	identity, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuth):
			s.clearIfToken(ctx, token)
		case state == domain.StateAnonymous:
			s.transition(domain.StateAnonymous, nil, token)
		}
		return fmt.Errorf("refresh: %w", err)
	}

	if replaced, current := s.replaceIfToken(token, identity); !replaced && current == "" {
		return fmt.Errorf("refresh: %w", domain.ErrAuth)
	}
	// A newer login that replaced the token owns the state now.
	return nil
}

// RestoreOnStartup reads the persisted token once and tries to resume the
// session with it. Any failure leaves the session Anonymous.
func (s *Session) RestoreOnStartup(ctx context.Context) {
	token, ok, err := s.store.Load(ctx, s.id)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load persisted credential")
		return
	}
	if !ok || token == "" {
		return
	}
	if tokenExpired(token, s.now()) {
		s.log.Debug().Msg("persisted credential expired")
		s.clear(ctx)
		return
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		s.log.Debug().Err(err).Msg("persisted credential discarded")
		s.clear(ctx)
		return
	}
	s.log.Debug().Msg("session restored")
}

// Call runs an authenticated backend call with the held token. An
// authentication rejection from fn clears the session before returning.
func (s *Session) Call(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	s.mu.Lock()
	token := s.token
	state := s.state
	s.mu.Unlock()

	if token == "" || state != domain.StateAuthenticated {
		return fmt.Errorf("%w: no active session", domain.ErrAuth)
	}

	err := fn(ctx, token)
	if errors.Is(err, domain.ErrAuth) {
		s.log.Info().Msg("credential rejected by backend, session cleared")
		s.clearIfToken(ctx, token)
	}
	return err
}

func (s *Session) clear(ctx context.Context) {
	if err := s.store.Delete(ctx, s.id); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete persisted credential")
	}
	s.transition(domain.StateAnonymous, nil, "")
}

// clearIfToken clears the session only if token is still the held one, so a
// late failure does not undo a newer login.
func (s *Session) clearIfToken(ctx context.Context, token string) {
	s.mu.Lock()
	current := s.token
	s.mu.Unlock()
	if current != token {
		return
	}
	s.clear(ctx)
}

// replaceIfToken installs identity only if token is still the held one. It
// returns the held token when it is not.
func (s *Session) replaceIfToken(token string, identity *domain.Identity) (bool, string) {
	s.mu.Lock()
	current := s.token
	s.mu.Unlock()
	if current != token {
		return false, current
	}
	s.transition(domain.StateAuthenticated, identity, token)
	return true, current
}

// transition applies next and notifies listeners outside the lock.
func (s *Session) transition(next domain.SessionState, identity *domain.Identity, token string) {
	s.mu.Lock()
	from := s.state
	if from == next && next != domain.StateAuthenticated {
		s.identity = identity
		s.token = token
		s.mu.Unlock()
		return
	}
	if !from.CanTransitionTo(next) {
		s.mu.Unlock()
		s.log.Warn().Str("from", string(from)).Str("to", string(next)).Msg("invalid session transition ignored")
		return
	}
	s.state = next
	s.identity = identity
	s.token = token
	change := Change{SessionID: s.id, From: from, To: next, Snapshot: s.snapshotLocked()}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}

func (s *Session) snapshotLocked() domain.SessionSnapshot {
	snap := domain.SessionSnapshot{State: s.state}
	if s.identity != nil {
		identity := *s.identity
		snap.Identity = &identity
	}
	return snap
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens are never considered expired here; the backend decides.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
