package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/digitalwallet/wallet-web/internal/api/sessioncookie"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

const (
	ctxSession   = "session"
	ctxSessionID = "session_id"
)

// Session binds every request to a browser session. A missing or malformed
// cookie gets a fresh ID.
func Session(resolver ports.SessionResolver, secureCookies bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := sessioncookie.Read(c.Request())
			if !ok {
				sid = sessioncookie.New()
				sessioncookie.Write(c.Response(), sid, secureCookies)
			}

			c.Set(ctxSessionID, sid)
			c.Set(ctxSession, resolver.Get(c.Request().Context(), sid))
			return next(c)
		}
	}
}

// SessionFrom returns the session bound by the Session middleware, or nil.
func SessionFrom(c echo.Context) ports.SessionService {
	sess, _ := c.Get(ctxSession).(ports.SessionService)
	return sess
}

// SessionIDFrom returns the browser session ID bound by the Session middleware.
func SessionIDFrom(c echo.Context) string {
	sid, _ := c.Get(ctxSessionID).(string)
	return sid
}
