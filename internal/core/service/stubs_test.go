package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubWalletAPI struct {
	mu sync.Mutex

	loginToken string
	loginErr   error
	registerFn func(name, email, password string) (*ports.RegisteredUser, error)

	// identities maps token -> identity returned by CurrentUser.
	identities map[string]*domain.Identity
	meErr      error
	// beforeMe runs at the start of CurrentUser, outside the stub lock.
	beforeMe func(token string)

	addErr      error
	transferErr error
	page        *domain.TransactionPage
	txErr       error

	calls       map[string]int
	transferred []string
	lastPage    [2]int
}

func newStubWalletAPI() *stubWalletAPI {
	return &stubWalletAPI{
		identities: make(map[string]*domain.Identity),
		calls:      make(map[string]int),
	}
}

func (a *stubWalletAPI) count(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls[name]++
}

func (a *stubWalletAPI) callCount(name string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[name]
}

func (a *stubWalletAPI) totalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, c := range a.calls {
		n += c
	}
	return n
}

func (a *stubWalletAPI) setIdentity(token string, identity *domain.Identity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.identities[token] = identity
}

func (a *stubWalletAPI) Register(_ context.Context, name, email, password string) (*ports.RegisteredUser, error) {
	a.count("register")
	if a.registerFn != nil {
		return a.registerFn(name, email, password)
	}
	return &ports.RegisteredUser{ID: "1", Name: name, Email: email}, nil
}

func (a *stubWalletAPI) Login(_ context.Context, email, password string) (string, error) {
	a.count("login")
	if a.loginErr != nil {
		return "", a.loginErr
	}
	return a.loginToken, nil
}

func (a *stubWalletAPI) CurrentUser(_ context.Context, token string) (*domain.Identity, error) {
	a.count("me")
	if a.beforeMe != nil {
		a.beforeMe(token)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.meErr != nil {
		return nil, a.meErr
	}
	identity, ok := a.identities[token]
	if !ok {
		return nil, &domain.APIError{Status: 401, Message: "Unauthorized"}
	}
	clone := *identity
	return &clone, nil
}

func (a *stubWalletAPI) AddMoney(_ context.Context, token string, amount decimal.Decimal) error {
	a.count("add")
	return a.addErr
}

func (a *stubWalletAPI) Transfer(_ context.Context, token, toEmail string, amount decimal.Decimal) error {
	a.count("transfer")
	if a.transferErr != nil {
		return a.transferErr
	}
	a.mu.Lock()
	a.transferred = append(a.transferred, toEmail+":"+amount.StringFixed(2))
	a.mu.Unlock()
	return nil
}

func (a *stubWalletAPI) Transactions(_ context.Context, token string, page, size int) (*domain.TransactionPage, error) {
	a.count("transactions")
	a.mu.Lock()
	a.lastPage = [2]int{page, size}
	a.mu.Unlock()
	if a.txErr != nil {
		return nil, a.txErr
	}
	return a.page, nil
}

type stubTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]string
	loadErr error
	saves   int
	deletes int
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]string)}
}

func (s *stubTokenStore) Load(_ context.Context, sessionID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", false, s.loadErr
	}
	token, ok := s.tokens[sessionID]
	return token, ok, nil
}

func (s *stubTokenStore) Save(_ context.Context, sessionID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.tokens[sessionID] = token
	return nil
}

func (s *stubTokenStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	delete(s.tokens, sessionID)
	return nil
}

func (s *stubTokenStore) get(sessionID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[sessionID]
	return token, ok
}

type stubPendingStore struct {
	entries map[string]domain.PendingTransfer
	putErr  error
}

func newStubPendingStore() *stubPendingStore {
	return &stubPendingStore{entries: make(map[string]domain.PendingTransfer)}
}

func (s *stubPendingStore) Put(_ context.Context, sessionID string, p domain.PendingTransfer, _ time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[sessionID] = p
	return nil
}

func (s *stubPendingStore) Take(_ context.Context, sessionID string) (domain.PendingTransfer, bool, error) {
	p, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	return p, ok, nil
}

func (s *stubPendingStore) Discard(_ context.Context, sessionID string) error {
	delete(s.entries, sessionID)
	return nil
}

func identity(name, email, balance string) *domain.Identity {
	return &domain.Identity{Name: name, Email: email, Balance: decimal.RequireFromString(balance)}
}
