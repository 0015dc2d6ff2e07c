package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

// RegisteredUser is the backend's answer to a successful registration.
type RegisteredUser struct {
	ID    string
	Name  string
	Email string
}

// WalletAPI is the backend wallet service as seen by this frontend.
// Every method except Register and Login requires the bearer token.
type WalletAPI interface {
	Register(ctx context.Context, name, email, password string) (*RegisteredUser, error)
	Login(ctx context.Context, email, password string) (token string, err error)
	CurrentUser(ctx context.Context, token string) (*domain.Identity, error)
	AddMoney(ctx context.Context, token string, amount decimal.Decimal) error
	Transfer(ctx context.Context, token, toEmail string, amount decimal.Decimal) error
	Transactions(ctx context.Context, token string, page, size int) (*domain.TransactionPage, error)
}
