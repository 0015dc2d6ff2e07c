package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// WalletService drives the balance-mutating and history pages.
type WalletService interface {
	AddMoney(ctx context.Context, sess SessionService, amount decimal.Decimal) (domain.SessionSnapshot, error)
	PrepareTransfer(ctx context.Context, sess SessionService, sessionID, toEmail string, amount decimal.Decimal) (*domain.PendingTransfer, error)
	ConfirmTransfer(ctx context.Context, sess SessionService, sessionID, pendingID string) (*domain.PendingTransfer, domain.SessionSnapshot, error)
	CancelTransfer(ctx context.Context, sessionID string)
	Transactions(ctx context.Context, sess SessionService, page, size int) (*domain.TransactionPage, error)
}
