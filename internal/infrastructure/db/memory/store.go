// Package memory provides process-local token and pending transfer stores.
// Tokens kept here do not survive a restart; use the redis or mongo stores
// for that.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// TokenStore is an in-memory ports.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

func (s *TokenStore) Load(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[sessionID]
	return token, ok, nil
}

func (s *TokenStore) Save(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
	return nil
}

func (s *TokenStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, sessionID)
	return nil
}

type pendingEntry struct {
	transfer  domain.PendingTransfer
	expiresAt time.Time
}

// PendingTransferStore is an in-memory ports.PendingTransferStore. Expired
// entries are dropped on Take and purged on every Put.
type PendingTransferStore struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]pendingEntry
}

func NewPendingTransferStore() *PendingTransferStore {
	return &PendingTransferStore{now: time.Now, entries: make(map[string]pendingEntry)}
}

func (s *PendingTransferStore) Put(_ context.Context, sessionID string, pending domain.PendingTransfer, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
	s.entries[sessionID] = pendingEntry{transfer: pending, expiresAt: now.Add(ttl)}
	return nil
}

func (s *PendingTransferStore) Take(_ context.Context, sessionID string) (domain.PendingTransfer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return domain.PendingTransfer{}, false, nil
	}
	delete(s.entries, sessionID)
	if !s.now().Before(entry.expiresAt) {
		return domain.PendingTransfer{}, false, nil
	}
	return entry.transfer, true, nil
}

func (s *PendingTransferStore) Discard(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
