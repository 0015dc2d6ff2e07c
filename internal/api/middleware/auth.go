package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LoginPath is where unauthenticated visitors of protected pages are sent.
const LoginPath = "/login"

// RequireAuth lets the request through only for an Authenticated session.
// Everyone else is redirected to the login page; no return path is kept.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil || !sess.Snapshot().Authenticated() {
				return c.Redirect(http.StatusSeeOther, LoginPath)
			}
			return next(c)
		}
	}
}
