package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

// Wallet implements ports.WalletAPI over a Client.
type Wallet struct {
	client *Client
}

func NewWallet(client *Client) *Wallet {
	return &Wallet{client: client}
}

var _ ports.WalletAPI = (*Wallet)(nil)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID      json.Number     `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

type addMoneyRequest struct {
	Amount json.Number `json:"amount"`
}

type transferRequest struct {
	ToEmail string      `json:"toEmail"`
	Amount  json.Number `json:"amount"`
}

type transactionResponse struct {
	ID                json.Number     `json:"id"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	ToEmail           string          `json:"toEmail"`
	FromEmail         string          `json:"fromEmail"`
	CounterpartyEmail string          `json:"counterpartyEmail"`
	Timestamp         string          `json:"timestamp"`
}

type pageResponse struct {
	Content       []transactionResponse `json:"content"`
	Number        *int                  `json:"number"`
	Page          *int                  `json:"page"`
	Size          int                   `json:"size"`
	TotalPages    int                   `json:"totalPages"`
	TotalElements int64                 `json:"totalElements"`
}

func (w *Wallet) Register(ctx context.Context, name, email, password string) (*ports.RegisteredUser, error) {
	var resp userResponse
	err := w.client.Post(ctx, "/auth/register", "", registerRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return &ports.RegisteredUser{ID: resp.ID.String(), Name: resp.Name, Email: resp.Email}, nil
}

// Login returns the bare credential token.
func (w *Wallet) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := w.client.Post(ctx, "/auth/login", "", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	token := NormalizeToken(resp.Token)
	if token == "" {
		return "", &domain.APIError{Status: 401, Message: "login response carried no token"}
	}
	return token, nil
}

func (w *Wallet) CurrentUser(ctx context.Context, token string) (*domain.Identity, error) {
	var resp userResponse
	if err := w.client.Get(ctx, "/users/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &domain.Identity{Name: resp.Name, Email: resp.Email, Balance: resp.Balance}, nil
}

func (w *Wallet) AddMoney(ctx context.Context, token string, amount decimal.Decimal) error {
	return w.client.Post(ctx, "/wallet/add", token, addMoneyRequest{Amount: money(amount)}, nil)
}

func (w *Wallet) Transfer(ctx context.Context, token, toEmail string, amount decimal.Decimal) error {
	return w.client.Post(ctx, "/wallet/transfer", token, transferRequest{ToEmail: toEmail, Amount: money(amount)}, nil)
}

func (w *Wallet) Transactions(ctx context.Context, token string, page, size int) (*domain.TransactionPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var resp pageResponse
	if err := w.client.Get(ctx, "/wallet/transactions", token, query, &resp); err != nil {
		return nil, err
	}

	result := &domain.TransactionPage{
		Items:         make([]domain.Transaction, 0, len(resp.Content)),
		Page:          page,
		Size:          size,
		TotalPages:    resp.TotalPages,
		TotalElements: resp.TotalElements,
	}
	switch {
	case resp.Number != nil:
		result.Page = *resp.Number
	case resp.Page != nil:
		result.Page = *resp.Page
	}
	if resp.Size > 0 {
		result.Size = resp.Size
	}
	for _, tx := range resp.Content {
		result.Items = append(result.Items, tx.toDomain())
	}
	return result, nil
}

func (tx transactionResponse) toDomain() domain.Transaction {
	t := domain.Transaction{
		ID:        tx.ID.String(),
		Type:      domain.TransactionType(strings.ToUpper(tx.Type)),
		Amount:    tx.Amount,
		Timestamp: parseTimestamp(tx.Timestamp),
	}
	switch {
	case tx.CounterpartyEmail != "":
		t.CounterpartyEmail = tx.CounterpartyEmail
	case t.Type == domain.TransactionSend:
		t.CounterpartyEmail = tx.ToEmail
	case t.Type == domain.TransactionReceive:
		t.CounterpartyEmail = tx.FromEmail
	}
	return t
}

// Backend timestamps are either RFC 3339 or a zone-less local date-time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
