package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// PendingTransferStore parks unconfirmed transfers in Redis.
// Key format: wallet:pending:<session_id>
type PendingTransferStore struct {
	client *redis.Client
}

func NewPendingTransferStore(client *redis.Client) *PendingTransferStore {
	return &PendingTransferStore{client: client}
}

func (s *PendingTransferStore) Put(ctx context.Context, sessionID string, p domain.PendingTransfer, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending transfer: %w", err)
	}
	if err := s.client.Set(ctx, pendingKey(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save pending transfer: %w", err)
	}
	return nil
}

// Take reads and deletes the entry in one GETDEL round trip, so two
// concurrent confirmations cannot both see it.
func (s *PendingTransferStore) Take(ctx context.Context, sessionID string) (domain.PendingTransfer, bool, error) {
	raw, err := s.client.GetDel(ctx, pendingKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PendingTransfer{}, false, nil
	}
	if err != nil {
		return domain.PendingTransfer{}, false, fmt.Errorf("take pending transfer: %w", err)
	}
	var p domain.PendingTransfer
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.PendingTransfer{}, false, fmt.Errorf("decode pending transfer: %w", err)
	}
	return p, true, nil
}

func (s *PendingTransferStore) Discard(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, pendingKey(sessionID)).Err()
}

func pendingKey(sessionID string) string {
	return "wallet:pending:" + sessionID
}
