package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/api/flash"
	"github.com/digitalwallet/wallet-web/internal/api/middleware"
	"github.com/digitalwallet/wallet-web/internal/api/sessioncookie"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

// AuthHandler serves the login, registration and logout pages.
type AuthHandler struct {
	responder
	wallet   ports.WalletService
	sessions ports.SessionResolver
	log      zerolog.Logger
}

func NewAuthHandler(wallet ports.WalletService, sessions ports.SessionResolver, secureCookies bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		responder: responder{secureCookies: secureCookies},
		wallet:    wallet,
		sessions:  sessions,
		log:       log,
	}
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return h.page(c, http.StatusOK, "login", "Login", loginView{})
}

// Login authenticates and sends the user to the dashboard.
func (h *AuthHandler) Login(c echo.Context) error {
	sess, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.page(c, http.StatusBadRequest, "login", "Login", loginView{Error: msgInvalidForm})
	}
	form.normalize()
	if err := c.Validate(&form); err != nil {
		return h.page(c, statusFor(err), "login", "Login", loginView{Email: form.Email, Error: userMessage(err, "Login failed")})
	}

	if err := sess.Login(c.Request().Context(), form.Email, form.Password); err != nil {
		return h.page(c, statusFor(err), "login", "Login", loginView{Email: form.Email, Error: userMessage(err, "Login failed")})
	}
	return h.redirect(c, middleware.HomePath, flash.Success(msgLoginOK))
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	return h.page(c, http.StatusOK, "register", "Register", registerView{})
}

// Register creates the account and sends the user to the login page. It does
// not log the user in.
func (h *AuthHandler) Register(c echo.Context) error {
	sess, _, err := ctxSession(c)
	if err != nil {
		return err
	}

	var form registerForm
	if err := c.Bind(&form); err != nil {
		return h.page(c, http.StatusBadRequest, "register", "Register", registerView{Error: msgInvalidForm})
	}
	form.normalize()
	view := registerView{Name: form.Name, Email: form.Email}
	if err := c.Validate(&form); err != nil {
		view.Error = userMessage(err, "Registration failed")
		return h.page(c, statusFor(err), "register", "Register", view)
	}

	if err := sess.Register(c.Request().Context(), form.Name, form.Email, form.Password); err != nil {
		view.Error = userMessage(err, "Registration failed")
		return h.page(c, statusFor(err), "register", "Register", view)
	}
	return h.redirect(c, middleware.LoginPath, flash.Success(msgRegisterOK))
}

// Logout clears the session and any parked transfer, then retires the
// browser session ID. The next request starts a fresh one.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	h.wallet.CancelTransfer(ctx, sid)
	sess.Logout(ctx)
	h.sessions.Forget(sid)
	sessioncookie.Clear(c.Response(), h.secureCookies)
	return h.redirect(c, middleware.LoginPath, flash.Info(msgLoggedOut))
}
