package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HomePath is the landing page of an authenticated user.
const HomePath = "/dashboard"

// GuestOnly sends already authenticated users away from the login and
// registration pages.
func GuestOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sess := SessionFrom(c); sess != nil && sess.Snapshot().Authenticated() {
				return c.Redirect(http.StatusSeeOther, HomePath)
			}
			return next(c)
		}
	}
}
