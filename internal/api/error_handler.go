package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/digitalwallet/wallet-web/internal/api/middleware"
	"github.com/digitalwallet/wallet-web/internal/core/domain"
	"github.com/digitalwallet/wallet-web/internal/web"
)

type errorView struct {
	Status  int
	Message string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends authentication failures back to the login page.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors without leaking details to the browser.
//   - Renders the error page, falling back to plain text.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if errors.Is(err, domain.ErrAuth) {
			_ = c.Redirect(http.StatusSeeOther, middleware.LoginPath)
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		page := web.Page{Title: http.StatusText(code), Data: errorView{Status: code, Message: msg}}
		if renderErr := c.Render(code, "error", page); renderErr != nil {
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404/405 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable, "The wallet service is unavailable. Please try again."
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "The request was rejected."
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Something went wrong."
}
