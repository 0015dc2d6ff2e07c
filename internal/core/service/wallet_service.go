package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	defaultPendingTTL = 5 * time.Minute
)

// RejectionFunc observes a client-side validation rejection.
type RejectionFunc func(operation string, err error)

type walletService struct {
	api        ports.WalletAPI
	pending    ports.PendingTransferStore
	pendingTTL time.Duration
	onReject   RejectionFunc
	log        zerolog.Logger
	now        func() time.Time
}

// NewWalletService returns a WalletService implementation. onReject may be nil.
func NewWalletService(
	api ports.WalletAPI,
	pending ports.PendingTransferStore,
	pendingTTL time.Duration,
	onReject RejectionFunc,
	log zerolog.Logger,
) ports.WalletService {
	if pendingTTL <= 0 {
		pendingTTL = defaultPendingTTL
	}
	if onReject == nil {
		onReject = func(string, error) {}
	}
	return &walletService{
		api:        api,
		pending:    pending,
		pendingTTL: pendingTTL,
		onReject:   onReject,
		log:        log,
		now:        time.Now,
	}
}

// AddMoney tops up the wallet and returns the snapshot after a refresh.
func (s *walletService) AddMoney(ctx context.Context, sess ports.SessionService, amount decimal.Decimal) (domain.SessionSnapshot, error) {
	if !amount.IsPositive() {
		s.onReject("add_money", domain.ErrInvalidAmount)
		return domain.SessionSnapshot{}, domain.ErrInvalidAmount
	}

	err := sess.Call(ctx, func(ctx context.Context, token string) error {
		return s.api.AddMoney(ctx, token, amount)
	})
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("add money: %w", err)
	}

	s.log.Info().Str("amount", amount.StringFixed(2)).Msg("money added")
	return s.refreshed(ctx, sess, "add money")
}

// PrepareTransfer runs the local checks and parks the transfer until the user
// confirms it. Nothing is sent to the backend here.
func (s *walletService) PrepareTransfer(ctx context.Context, sess ports.SessionService, sessionID, toEmail string, amount decimal.Decimal) (*domain.PendingTransfer, error) {
	snap := sess.Snapshot()
	if !snap.Authenticated() {
		return nil, fmt.Errorf("prepare transfer: %w", domain.ErrAuth)
	}
	toEmail = strings.TrimSpace(toEmail)

	var reject error
	switch {
	case !amount.IsPositive():
		reject = domain.ErrInvalidAmount
	case amount.GreaterThan(snap.Identity.Balance):
		reject = domain.ErrInsufficientBalance
	case domain.SameEmail(toEmail, snap.Identity.Email):
		reject = domain.ErrSelfTransfer
	}
	if reject != nil {
		s.onReject("transfer", reject)
		return nil, reject
	}

	pending := domain.PendingTransfer{
		ID:        uuid.NewString(),
		ToEmail:   toEmail,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	}
	if err := s.pending.Put(ctx, sessionID, pending, s.pendingTTL); err != nil {
		return nil, fmt.Errorf("prepare transfer: %w", err)
	}
	return &pending, nil
}

// ConfirmTransfer sends the parked transfer to the backend and returns it with
// the refreshed snapshot. The pending entry is consumed first so a repeated
// confirmation cannot send it twice.
func (s *walletService) ConfirmTransfer(ctx context.Context, sess ports.SessionService, sessionID, pendingID string) (*domain.PendingTransfer, domain.SessionSnapshot, error) {
	pending, ok, err := s.pending.Take(ctx, sessionID)
	if err != nil {
		return nil, domain.SessionSnapshot{}, fmt.Errorf("confirm transfer: %w", err)
	}
	if !ok || pending.ID != pendingID {
		return nil, domain.SessionSnapshot{}, domain.ErrNoPendingTransfer
	}

	err = sess.Call(ctx, func(ctx context.Context, token string) error {
		return s.api.Transfer(ctx, token, pending.ToEmail, pending.Amount)
	})
	if err != nil {
		return nil, domain.SessionSnapshot{}, fmt.Errorf("transfer: %w", err)
	}

	s.log.Info().
		Str("to", pending.ToEmail).
		Str("amount", pending.Amount.StringFixed(2)).
		Msg("transfer completed")
	snap, err := s.refreshed(ctx, sess, "transfer")
	if err != nil {
		return nil, domain.SessionSnapshot{}, err
	}
	return &pending, snap, nil
}

// CancelTransfer discards any parked transfer.
func (s *walletService) CancelTransfer(ctx context.Context, sessionID string) {
	if err := s.pending.Discard(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Msg("failed to discard pending transfer")
	}
}

// Transactions returns one page of history.
func (s *walletService) Transactions(ctx context.Context, sess ports.SessionService, page, size int) (*domain.TransactionPage, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	var result *domain.TransactionPage
	err := sess.Call(ctx, func(ctx context.Context, token string) error {
		var err error
		result, err = s.api.Transactions(ctx, token, page, size)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return result, nil
}

// refreshed re-fetches the identity after a successful mutation. Only a lost
// session is reported; other refresh failures are logged.
func (s *walletService) refreshed(ctx context.Context, sess ports.SessionService, op string) (domain.SessionSnapshot, error) {
	if err := sess.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return domain.SessionSnapshot{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Warn().Err(err).Str("operation", op).Msg("balance refresh failed")
	}
	return sess.Snapshot(), nil
}
