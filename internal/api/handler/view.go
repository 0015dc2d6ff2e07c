package handler

import (
	"strings"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

const timestampLayout = "Jan 2, 2006 15:04"

// --- Page data ---

type loginView struct {
	Email string
	Error string
}

type registerView struct {
	Name  string
	Email string
	Error string
}

type dashboardView struct {
	Recent []transactionView
	// Stale is set when the balance could not be refreshed for this render.
	Stale bool
	Error string
}

type addMoneyView struct {
	Amount  string
	Presets []string
	Error   string
}

type transferView struct {
	ToEmail string
	Amount  string
	Error   string
}

type confirmView struct {
	ID      string
	ToEmail string
	Amount  string
}

type transactionsView struct {
	Items         []transactionView
	TotalElements int64
	TotalPages    int
	DisplayPage   int
	HasPrevious   bool
	HasNext       bool
	PreviousPage  int
	NextPage      int
	Error         string
}

type transactionView struct {
	Kind   string
	Label  string
	Amount string
	Credit bool
	When   string
}

var addMoneyPresets = []string{"10", "25", "50", "100"}

// --- Domain → view ---

func toTransactionViews(items []domain.Transaction) []transactionView {
	out := make([]transactionView, 0, len(items))
	for _, tx := range items {
		out = append(out, toTransactionView(tx))
	}
	return out
}

func toTransactionView(tx domain.Transaction) transactionView {
	v := transactionView{
		Kind:   strings.ToLower(string(tx.Type)),
		Credit: tx.Type.Credit(),
	}
	switch tx.Type {
	case domain.TransactionAdd:
		v.Label = "Added money"
	case domain.TransactionSend:
		v.Label = "Sent to " + tx.CounterpartyEmail
	case domain.TransactionReceive:
		v.Label = "Received from " + tx.CounterpartyEmail
	default:
		v.Label = string(tx.Type)
	}
	if v.Credit {
		v.Amount = "+" + domain.FormatAmount(tx.Amount)
	} else {
		v.Amount = "-" + domain.FormatAmount(tx.Amount)
	}
	if !tx.Timestamp.IsZero() {
		v.When = tx.Timestamp.Format(timestampLayout)
	}
	return v
}

func toTransactionsView(p *domain.TransactionPage) transactionsView {
	return transactionsView{
		Items:         toTransactionViews(p.Items),
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		DisplayPage:   p.Page + 1,
		HasPrevious:   p.HasPrevious(),
		HasNext:       p.HasNext(),
		PreviousPage:  p.Page - 1,
		NextPage:      p.Page + 1,
	}
}
