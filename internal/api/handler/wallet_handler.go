package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/api/flash"
	"github.com/digitalwallet/wallet-web/internal/api/metrics"
	"github.com/digitalwallet/wallet-web/internal/api/middleware"
	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
	"github.com/digitalwallet/wallet-web/internal/core/service"
)

// RecentTransactions is how many entries the dashboard lists.
const RecentTransactions = 5

// WalletHandler serves the pages behind RequireAuth.
type WalletHandler struct {
	responder
	wallet ports.WalletService
	log    zerolog.Logger
}

func NewWalletHandler(wallet ports.WalletService, secureCookies bool, log zerolog.Logger) *WalletHandler {
	return &WalletHandler{
		responder: responder{secureCookies: secureCookies},
		wallet:    wallet,
		log:       log,
	}
}

// Dashboard re-fetches the identity and shows the most recent transactions.
func (h *WalletHandler) Dashboard(c echo.Context) error {
	sess, _, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var view dashboardView
	if err := sess.Refresh(ctx); err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return h.sessionExpired(c)
		}
		h.log.Warn().Err(err).Msg("dashboard: balance refresh failed")
		view.Stale = true
	}

	page, err := h.wallet.Transactions(ctx, sess, 0, RecentTransactions)
	switch {
	case errors.Is(err, domain.ErrAuth):
		return h.sessionExpired(c)
	case err != nil:
		h.log.Warn().Err(err).Msg("dashboard: recent transactions unavailable")
		view.Error = userMessage(err, "Failed to load transactions")
	default:
		view.Recent = toTransactionViews(page.Items)
	}
	return h.page(c, http.StatusOK, "dashboard", "Dashboard", view)
}

func (h *WalletHandler) ShowAddMoney(c echo.Context) error {
	return h.page(c, http.StatusOK, "add_money", "Add Money", addMoneyView{Presets: addMoneyPresets})
}

// AddMoney tops up the wallet. The new balance shown afterwards is the one
// the backend reports.
func (h *WalletHandler) AddMoney(c echo.Context) error {
	sess, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form addMoneyForm
	if err := c.Bind(&form); err != nil {
		return h.page(c, http.StatusBadRequest, "add_money", "Add Money", addMoneyView{Presets: addMoneyPresets, Error: msgInvalidForm})
	}
	view := addMoneyView{Amount: form.Amount, Presets: addMoneyPresets}

	amount, err := h.validAmount(c, &form, form.Amount)
	if err == nil {
		_, err = h.wallet.AddMoney(c.Request().Context(), sess, amount)
	}
	switch {
	case err == nil:
		return h.redirect(c, middleware.HomePath, flash.Success(fmt.Sprintf("Successfully added %s!", domain.FormatAmount(amount))))
	case errors.Is(err, domain.ErrAuth):
		return h.sessionExpired(c)
	default:
		view.Error = userMessage(err, "Failed to add money")
		return h.page(c, statusFor(err), "add_money", "Add Money", view)
	}
}

func (h *WalletHandler) ShowTransfer(c echo.Context) error {
	return h.page(c, http.StatusOK, "transfer", "Transfer", transferView{})
}

// Transfer validates the request locally and asks for confirmation. Nothing
// reaches the backend until ConfirmTransfer.
func (h *WalletHandler) Transfer(c echo.Context) error {
	sess, sid, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form transferForm
	if err := c.Bind(&form); err != nil {
		return h.page(c, http.StatusBadRequest, "transfer", "Transfer", transferView{Error: msgInvalidForm})
	}
	form.normalize()
	view := transferView{ToEmail: form.ToEmail, Amount: form.Amount}

	var pending *domain.PendingTransfer
	amount, err := h.validAmount(c, &form, form.Amount)
	if err == nil {
		pending, err = h.wallet.PrepareTransfer(c.Request().Context(), sess, sid, form.ToEmail, amount)
	}
	switch {
	case err == nil:
		return h.page(c, http.StatusOK, "transfer_confirm", "Confirm Transfer", confirmView{
			ID:      pending.ID,
			ToEmail: pending.ToEmail,
			Amount:  domain.FormatAmount(pending.Amount),
		})
	case errors.Is(err, domain.ErrAuth):
		return h.sessionExpired(c)
	default:
		view.Error = userMessage(err, "Transfer failed")
		return h.page(c, statusFor(err), "transfer", "Transfer", view)
	}
}

// ConfirmTransfer sends the parked transfer.
func (h *WalletHandler) ConfirmTransfer(c echo.Context) error {
	sess, sid, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form confirmForm
	if err := c.Bind(&form); err != nil {
		return h.redirect(c, "/transfer", flash.Error(msgInvalidForm))
	}
	if err := c.Validate(&form); err != nil {
		return h.redirect(c, "/transfer", flash.Error(msgNoPending))
	}

	confirmed, _, err := h.wallet.ConfirmTransfer(c.Request().Context(), sess, sid, form.PendingID)
	switch {
	case err == nil:
		metrics.TransfersTotal.WithLabelValues("ok").Inc()
		msg := fmt.Sprintf("Successfully transferred %s!", domain.FormatAmount(confirmed.Amount))
		return h.redirect(c, middleware.HomePath, flash.Success(msg))
	case errors.Is(err, domain.ErrNoPendingTransfer):
		return h.redirect(c, "/transfer", flash.Error(msgNoPending))
	case errors.Is(err, domain.ErrAuth):
		metrics.TransfersTotal.WithLabelValues("failed").Inc()
		return h.sessionExpired(c)
	default:
		metrics.TransfersTotal.WithLabelValues("failed").Inc()
		return h.redirect(c, "/transfer", flash.Error(userMessage(err, "Transfer failed")))
	}
}

// CancelTransfer drops the parked transfer and returns to the form.
func (h *WalletHandler) CancelTransfer(c echo.Context) error {
	_, sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	h.wallet.CancelTransfer(c.Request().Context(), sid)
	return h.redirect(c, "/transfer", flash.Info(msgTransferCancel))
}

// Transactions lists one page of history; ?page is 0-based.
func (h *WalletHandler) Transactions(c echo.Context) error {
	sess, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	pageNo, _ := strconv.Atoi(c.QueryParam("page"))
	page, err := h.wallet.Transactions(c.Request().Context(), sess, pageNo, service.DefaultPageSize)
	switch {
	case err == nil:
		return h.page(c, http.StatusOK, "transactions", "Transactions", toTransactionsView(page))
	case errors.Is(err, domain.ErrAuth):
		return h.sessionExpired(c)
	default:
		view := transactionsView{Error: userMessage(err, "Failed to load transactions")}
		return h.page(c, statusFor(err), "transactions", "Transactions", view)
	}
}

// validAmount runs the form validator and parses raw.
func (h *WalletHandler) validAmount(c echo.Context, form any, raw string) (decimal.Decimal, error) {
	if err := c.Validate(form); err != nil {
		return decimal.Decimal{}, err
	}
	return parseAmount(raw)
}
