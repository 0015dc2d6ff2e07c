package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry from the user's point of view.
type TransactionType string

const (
	TransactionAdd     TransactionType = "ADD"
	TransactionSend    TransactionType = "SEND"
	TransactionReceive TransactionType = "RECEIVE"
)

// Credit reports whether the entry increased the user's balance.
func (t TransactionType) Credit() bool {
	return t == TransactionAdd || t == TransactionReceive
}

// Transaction is one entry of the user's history. Read-only.
type Transaction struct {
	ID                string
	Type              TransactionType
	Amount            decimal.Decimal
	CounterpartyEmail string // empty for ADD
	Timestamp         time.Time
}

// TransactionPage is one page of history as returned by the backend.
type TransactionPage struct {
	Items         []Transaction
	Page          int // 0-based
	Size          int
	TotalPages    int
	TotalElements int64
}

// HasPrevious reports whether an earlier page exists.
func (p TransactionPage) HasPrevious() bool {
	return p.Page > 0
}

// HasNext reports whether a later page exists.
func (p TransactionPage) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

// PendingTransfer is a transfer that passed local validation and awaits the
// user's confirmation.
type PendingTransfer struct {
	ID        string          `json:"id"`
	ToEmail   string          `json:"to_email"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
