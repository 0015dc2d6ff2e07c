package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
	"github.com/digitalwallet/wallet-web/internal/web"
)

const testSessionID = "3f1c1bde-5a4e-4d8e-9d55-0b7c1f6a2b10"

type fakeSession struct {
	snap        domain.SessionSnapshot
	loginErr    error
	registerErr error
	refreshErr  error
	logouts     int
	registered  []string
}

func (f *fakeSession) Login(_ context.Context, email, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.snap = domain.SessionSnapshot{
		State:    domain.StateAuthenticated,
		Identity: &domain.Identity{Name: "Asha", Email: email, Balance: decimal.NewFromInt(100)},
	}
	return nil
}

func (f *fakeSession) Register(_ context.Context, name, email, _ string) error {
	f.registered = append(f.registered, name+"<"+email+">")
	return f.registerErr
}

func (f *fakeSession) Logout(context.Context) {
	f.logouts++
	f.snap = domain.SessionSnapshot{State: domain.StateAnonymous}
}

func (f *fakeSession) Refresh(context.Context) error    { return f.refreshErr }
func (f *fakeSession) Snapshot() domain.SessionSnapshot { return f.snap }

func (f *fakeSession) Call(ctx context.Context, fn func(context.Context, string) error) error {
	return fn(ctx, "T")
}

func signedIn(balance string) *fakeSession {
	return &fakeSession{snap: domain.SessionSnapshot{
		State:    domain.StateAuthenticated,
		Identity: &domain.Identity{Name: "Asha", Email: "a@x.io", Balance: decimal.RequireFromString(balance)},
	}}
}

type fakeWallet struct {
	addFn          func(amount decimal.Decimal) error
	prepareFn      func(toEmail string, amount decimal.Decimal) (*domain.PendingTransfer, error)
	confirmFn      func(pendingID string) (*domain.PendingTransfer, error)
	transactionsFn func(page, size int) (*domain.TransactionPage, error)
	cancelled      []string
}

var _ ports.WalletService = (*fakeWallet)(nil)

func (w *fakeWallet) AddMoney(_ context.Context, sess ports.SessionService, amount decimal.Decimal) (domain.SessionSnapshot, error) {
	return sess.Snapshot(), w.addFn(amount)
}

func (w *fakeWallet) PrepareTransfer(_ context.Context, _ ports.SessionService, _, toEmail string, amount decimal.Decimal) (*domain.PendingTransfer, error) {
	return w.prepareFn(toEmail, amount)
}

func (w *fakeWallet) ConfirmTransfer(_ context.Context, sess ports.SessionService, _, pendingID string) (*domain.PendingTransfer, domain.SessionSnapshot, error) {
	p, err := w.confirmFn(pendingID)
	return p, sess.Snapshot(), err
}

func (w *fakeWallet) CancelTransfer(_ context.Context, sessionID string) {
	w.cancelled = append(w.cancelled, sessionID)
}

func (w *fakeWallet) Transactions(_ context.Context, _ ports.SessionService, page, size int) (*domain.TransactionPage, error) {
	return w.transactionsFn(page, size)
}

type fakeResolver struct {
	forgotten []string
}

func (r *fakeResolver) Get(context.Context, string) ports.SessionService { return &fakeSession{} }
func (r *fakeResolver) Forget(sessionID string)                          { r.forgotten = append(r.forgotten, sessionID) }

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	e.Renderer = web.MustRenderer()
	return e
}

// newJSONContext posts a raw JSON body, used to exercise bind failures.
func newJSONContext(e *echo.Echo, target, body string, sess ports.SessionService) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("session", sess)
	c.Set("session_id", testSessionID)
	return c, rec
}

// newFormContext builds a context as the Session middleware would leave it.
func newFormContext(e *echo.Echo, method, target string, form url.Values, sess ports.SessionService) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set("session", sess)
		c.Set("session_id", testSessionID)
	}
	return c, rec
}
