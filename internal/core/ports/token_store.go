package ports

import (
	"context"
	"time"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// TokenStore persists the credential token of one browser session so it
// survives process restarts. Load returns ok=false when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context, sessionID string) (token string, ok bool, err error)
	Save(ctx context.Context, sessionID, token string) error
	Delete(ctx context.Context, sessionID string) error
}

// PendingTransferStore holds a transfer between validation and confirmation.
// Take removes the entry it returns; ok=false when none is held.
type PendingTransferStore interface {
	Put(ctx context.Context, sessionID string, pending domain.PendingTransfer, ttl time.Duration) error
	Take(ctx context.Context, sessionID string) (pending domain.PendingTransfer, ok bool, err error)
	Discard(ctx context.Context, sessionID string) error
}
