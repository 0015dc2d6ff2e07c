package ports

import (
	"context"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// SessionService is the per-browser auth session consumed by pages.
type SessionService interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context)
	Refresh(ctx context.Context) error
	Snapshot() domain.SessionSnapshot
	Call(ctx context.Context, fn func(ctx context.Context, token string) error) error
}

// SessionResolver hands out the session bound to a browser session ID.
type SessionResolver interface {
	Get(ctx context.Context, sessionID string) SessionService
	// Forget drops the session held for sessionID, if any.
	Forget(sessionID string)
}
