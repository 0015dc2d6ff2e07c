package handler

import (
	"errors"
	"html"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

func newWalletHandler(w *fakeWallet) *WalletHandler {
	return NewWalletHandler(w, false, zerolog.Nop())
}

func emptyPage(page, size int) (*domain.TransactionPage, error) {
	return &domain.TransactionPage{Page: page, Size: size}, nil
}

func TestWalletHandler_Dashboard(t *testing.T) {
	e := newTestEcho()
	var gotPage, gotSize int
	wallet := &fakeWallet{transactionsFn: func(page, size int) (*domain.TransactionPage, error) {
		gotPage, gotSize = page, size
		return &domain.TransactionPage{Items: []domain.Transaction{
			{ID: "1", Type: domain.TransactionSend, Amount: decimal.NewFromInt(50), CounterpartyEmail: "b@x.io"},
		}, Size: size, TotalPages: 1, TotalElements: 1}, nil
	}}
	c, rec := newFormContext(e, http.MethodGet, "/dashboard", nil, signedIn("50"))

	if err := newWalletHandler(wallet).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPage != 0 || gotSize != RecentTransactions {
		t.Fatalf("expected page 0 size %d, got %d/%d", RecentTransactions, gotPage, gotSize)
	}
	body := rec.Body.String()
	for _, want := range []string{"₹50.00", "Sent to b@x.io", "-₹50.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard missing %q", want)
		}
	}
}

func TestWalletHandler_Dashboard_StaleBalance(t *testing.T) {
	e := newTestEcho()
	sess := signedIn("80")
	sess.refreshErr = domain.ErrNetwork
	wallet := &fakeWallet{transactionsFn: emptyPage}
	c, rec := newFormContext(e, http.MethodGet, "/dashboard", nil, sess)

	if err := newWalletHandler(wallet).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "₹80.00") || !strings.Contains(body, "Balance may be out of date.") {
		t.Fatal("expected the last known balance marked as stale")
	}
}

func TestWalletHandler_Dashboard_SessionExpired(t *testing.T) {
	e := newTestEcho()
	sess := signedIn("80")
	sess.refreshErr = &domain.APIError{Status: 401}
	c, rec := newFormContext(e, http.MethodGet, "/dashboard", nil, sess)

	if err := newWalletHandler(&fakeWallet{}).Dashboard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 303 to /login, got %d to %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestWalletHandler_ShowAddMoney_Presets(t *testing.T) {
	e := newTestEcho()
	c, rec := newFormContext(e, http.MethodGet, "/add-money", nil, signedIn("0"))

	if err := newWalletHandler(&fakeWallet{}).ShowAddMoney(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	for _, preset := range addMoneyPresets {
		if !strings.Contains(rec.Body.String(), preset) {
			t.Fatalf("expected preset %s", preset)
		}
	}
}

func TestWalletHandler_AddMoney(t *testing.T) {
	cases := []struct {
		name     string
		amount   string
		backend  error
		status   int
		location string
		want     string
		calls    int
	}{
		{name: "ok", amount: "25.5", status: http.StatusSeeOther, location: "/dashboard", calls: 1},
		{name: "not a number", amount: "abc", status: http.StatusUnprocessableEntity, want: msgInvalidAmount},
		{name: "too many decimals", amount: "1.005", status: http.StatusUnprocessableEntity, want: msgInvalidAmount},
		{name: "missing", amount: "", status: http.StatusUnprocessableEntity, want: "Amount is required"},
		{name: "non-positive", amount: "0", backend: domain.ErrInvalidAmount, status: http.StatusUnprocessableEntity, want: msgInvalidAmount, calls: 1},
		{name: "backend failure", amount: "5", backend: &domain.APIError{Status: 500, Message: "boom"}, status: http.StatusBadGateway, want: "Failed to add money", calls: 1},
		{name: "expired", amount: "5", backend: &domain.APIError{Status: 401}, status: http.StatusSeeOther, location: "/login", calls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			calls := 0
			wallet := &fakeWallet{addFn: func(amount decimal.Decimal) error {
				calls++
				return tc.backend
			}}
			c, rec := newFormContext(e, http.MethodPost, "/add-money", url.Values{"amount": {tc.amount}}, signedIn("100"))

			if err := newWalletHandler(wallet).AddMoney(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.location != "" && rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected redirect to %s, got %q", tc.location, rec.Header().Get("Location"))
			}
			if tc.want != "" && !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected %q on the page", tc.want)
			}
			if calls != tc.calls {
				t.Fatalf("expected %d service calls, got %d", tc.calls, calls)
			}
		})
	}
}

func TestWalletHandler_Transfer_RendersConfirmation(t *testing.T) {
	e := newTestEcho()
	wallet := &fakeWallet{prepareFn: func(toEmail string, amount decimal.Decimal) (*domain.PendingTransfer, error) {
		return &domain.PendingTransfer{ID: "7c0d6f6e-3c1b-4a53-9a43-8f1c2b7e9d21", ToEmail: toEmail, Amount: amount}, nil
	}}
	c, rec := newFormContext(e, http.MethodPost, "/transfer", url.Values{
		"to_email": {" b@x.io "}, "amount": {"50"},
	}, signedIn("100"))

	if err := newWalletHandler(wallet).Transfer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"₹50.00", "b@x.io", "7c0d6f6e-3c1b-4a53-9a43-8f1c2b7e9d21", "Confirm Transfer"} {
		if !strings.Contains(body, want) {
			t.Fatalf("confirmation page missing %q", want)
		}
	}
}

func TestWalletHandler_Transfer_Rejected(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{domain.ErrInsufficientBalance, msgInsufficient},
		{domain.ErrSelfTransfer, msgSelfTransfer},
		{domain.ErrInvalidAmount, msgInvalidAmount},
	}
	for _, tc := range cases {
		e := newTestEcho()
		wallet := &fakeWallet{prepareFn: func(string, decimal.Decimal) (*domain.PendingTransfer, error) {
			return nil, tc.err
		}}
		c, rec := newFormContext(e, http.MethodPost, "/transfer", url.Values{
			"to_email": {"b@x.io"}, "amount": {"500"},
		}, signedIn("100"))

		if err := newWalletHandler(wallet).Transfer(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%v: expected 422, got %d", tc.err, rec.Code)
		}
		body := rec.Body.String()
		if !strings.Contains(body, tc.want) {
			t.Fatalf("%v: expected %q on the page", tc.err, tc.want)
		}
		if !strings.Contains(body, `value="b@x.io"`) {
			t.Fatalf("%v: expected the recipient to be kept", tc.err)
		}
	}
}

func TestWalletHandler_ConfirmTransfer(t *testing.T) {
	const pendingID = "7c0d6f6e-3c1b-4a53-9a43-8f1c2b7e9d21"
	cases := []struct {
		name      string
		pendingID string
		err       error
		location  string
	}{
		{name: "ok", pendingID: pendingID, location: "/dashboard"},
		{name: "malformed id", pendingID: "nope", location: "/transfer"},
		{name: "already used", pendingID: pendingID, err: domain.ErrNoPendingTransfer, location: "/transfer"},
		{name: "backend rejects", pendingID: pendingID, err: &domain.APIError{Status: 404, Message: "Recipient not found"}, location: "/transfer"},
		{name: "expired", pendingID: pendingID, err: &domain.APIError{Status: 401}, location: "/login"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			var got string
			wallet := &fakeWallet{confirmFn: func(id string) (*domain.PendingTransfer, error) {
				got = id
				if tc.err != nil {
					return nil, tc.err
				}
				return &domain.PendingTransfer{ID: id, ToEmail: "b@x.io", Amount: decimal.NewFromInt(50)}, nil
			}}
			c, rec := newFormContext(e, http.MethodPost, "/transfer/confirm", url.Values{"pending_id": {tc.pendingID}}, signedIn("100"))

			if err := newWalletHandler(wallet).ConfirmTransfer(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected 303 to %s, got %d to %q", tc.location, rec.Code, rec.Header().Get("Location"))
			}
			if tc.pendingID == "nope" && got != "" {
				t.Fatal("malformed id must not reach the service")
			}
		})
	}
}

func TestWalletHandler_CancelTransfer(t *testing.T) {
	e := newTestEcho()
	wallet := &fakeWallet{}
	c, rec := newFormContext(e, http.MethodPost, "/transfer/cancel", url.Values{}, signedIn("100"))

	if err := newWalletHandler(wallet).CancelTransfer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/transfer" {
		t.Fatalf("expected 303 to /transfer, got %d to %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(wallet.cancelled) != 1 {
		t.Fatal("expected the pending transfer to be discarded")
	}
}

func TestWalletHandler_Transactions(t *testing.T) {
	e := newTestEcho()
	var gotPage int
	wallet := &fakeWallet{transactionsFn: func(page, size int) (*domain.TransactionPage, error) {
		gotPage = page
		return &domain.TransactionPage{
			Items: []domain.Transaction{
				{ID: "9", Type: domain.TransactionReceive, Amount: decimal.NewFromInt(10), CounterpartyEmail: "c@x.io"},
			},
			Page: page, Size: size, TotalPages: 3, TotalElements: 41,
		}, nil
	}}
	c, rec := newFormContext(e, http.MethodGet, "/transactions?page=1", nil, signedIn("100"))

	if err := newWalletHandler(wallet).Transactions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotPage != 1 {
		t.Fatalf("expected page 1, got %d", gotPage)
	}
	body := html.UnescapeString(rec.Body.String())
	for _, want := range []string{"41 transactions", "Page 2 of 3", "?page=0", "?page=2", "Received from c@x.io", "+₹10.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("history page missing %q", want)
		}
	}
}

func TestWalletHandler_Transactions_BackendDown(t *testing.T) {
	e := newTestEcho()
	wallet := &fakeWallet{transactionsFn: func(int, int) (*domain.TransactionPage, error) {
		return nil, errors.Join(domain.ErrNetwork, errors.New("dial tcp: refused"))
	}}
	c, rec := newFormContext(e, http.MethodGet, "/transactions", nil, signedIn("100"))

	if err := newWalletHandler(wallet).Transactions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgUnavailable) {
		t.Fatal("expected the unavailable message")
	}
}

func TestWalletHandler_MalformedBody(t *testing.T) {
	wallet := &fakeWallet{
		addFn: func(decimal.Decimal) error {
			t.Fatal("add money must not be called")
			return nil
		},
		prepareFn: func(string, decimal.Decimal) (*domain.PendingTransfer, error) {
			t.Fatal("prepare transfer must not be called")
			return nil, nil
		},
		confirmFn: func(string) (*domain.PendingTransfer, error) {
			t.Fatal("confirm transfer must not be called")
			return nil, nil
		},
	}
	h := newWalletHandler(wallet)
	e := newTestEcho()

	c, rec := newJSONContext(e, "/add-money", "{", signedIn("100"))
	if err := h.AddMoney(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), msgInvalidForm) {
		t.Fatalf("add money: expected 400 with the form message, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, "/transfer", "{", signedIn("100"))
	if err := h.Transfer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), msgInvalidForm) {
		t.Fatalf("transfer: expected 400 with the form message, got %d", rec.Code)
	}

	c, rec = newJSONContext(e, "/transfer/confirm", "{", signedIn("100"))
	if err := h.ConfirmTransfer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/transfer" {
		t.Fatalf("confirm: expected 303 to /transfer, got %d to %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"50", "50", true},
		{" 12.34 ", "12.34", true},
		{"1.500", "1.5", true},
		{"-3", "-3", true},
		{"1.005", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.raw)
		if tc.ok != (err == nil) {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if !tc.ok {
			if !errors.Is(err, domain.ErrInvalidAmount) {
				t.Fatalf("%q: expected ErrInvalidAmount, got %v", tc.raw, err)
			}
			continue
		}
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("%q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"form error", &formError{msg: "Email is required"}, "Email is required"},
		{"server message", &domain.APIError{Status: 400, Message: "Recipient not found"}, "Recipient not found"},
		{"insufficient without message", &domain.APIError{Status: 422}, "Transfer failed"},
		{"local insufficient", domain.ErrInsufficientBalance, msgInsufficient},
		{"server error hidden", &domain.APIError{Status: 500, Message: "NullPointerException"}, "Transfer failed"},
		{"network", domain.ErrNetwork, msgUnavailable},
		{"unknown", errors.New("x"), "Transfer failed"},
	}
	for _, tc := range cases {
		if got := userMessage(tc.err, "Transfer failed"); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestToTransactionView(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		tx     domain.Transaction
		label  string
		amount string
		credit bool
	}{
		{domain.Transaction{Type: domain.TransactionAdd, Amount: decimal.NewFromInt(10), Timestamp: ts}, "Added money", "+₹10.00", true},
		{domain.Transaction{Type: domain.TransactionSend, Amount: decimal.NewFromInt(5), CounterpartyEmail: "b@x.io"}, "Sent to b@x.io", "-₹5.00", false},
		{domain.Transaction{Type: domain.TransactionReceive, Amount: decimal.RequireFromString("2.5"), CounterpartyEmail: "c@x.io"}, "Received from c@x.io", "+₹2.50", true},
	}
	for _, tc := range cases {
		v := toTransactionView(tc.tx)
		if v.Label != tc.label || v.Amount != tc.amount || v.Credit != tc.credit {
			t.Fatalf("unexpected view %+v", v)
		}
	}
	if v := toTransactionView(cases[0].tx); v.When != "May 1, 2024 10:30" {
		t.Fatalf("unexpected timestamp %q", v.When)
	}
	if v := toTransactionView(cases[1].tx); v.When != "" {
		t.Fatal("zero timestamp should render empty")
	}
}

func TestToTransactionsView(t *testing.T) {
	v := toTransactionsView(&domain.TransactionPage{Page: 0, Size: 20, TotalPages: 2, TotalElements: 21})
	if v.DisplayPage != 1 || v.HasPrevious || !v.HasNext || v.NextPage != 1 {
		t.Fatalf("unexpected view %+v", v)
	}
}
