package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/digitalwallet/wallet-web/internal/api/flash"
	"github.com/digitalwallet/wallet-web/internal/api/middleware"
	"github.com/digitalwallet/wallet-web/internal/core/ports"
	"github.com/digitalwallet/wallet-web/internal/web"
)

// ctxSession returns the browser session bound by the Session middleware.
// Its absence means the route was registered without it.
func ctxSession(c echo.Context) (ports.SessionService, string, error) {
	sess := middleware.SessionFrom(c)
	sid := middleware.SessionIDFrom(c)
	if sess == nil || sid == "" {
		return nil, "", echo.NewHTTPError(http.StatusInternalServerError, "session middleware not installed")
	}
	return sess, sid, nil
}

// responder renders pages and post/redirect/get responses.
type responder struct {
	secureCookies bool
}

// page renders name inside the layout. The pending flash notice, if any, is
// consumed here.
func (r responder) page(c echo.Context, status int, name, title string, data any) error {
	p := web.Page{Title: title, Data: data}
	if sess := middleware.SessionFrom(c); sess != nil {
		if snap := sess.Snapshot(); snap.Authenticated() {
			p.User = snap.Identity
		}
	}
	if notice, ok := flash.ReadAndClear(c.Response(), c.Request(), r.secureCookies); ok {
		p.Flash = &notice
	}
	return c.Render(status, name, p)
}

func (r responder) redirect(c echo.Context, path string, notice flash.Notice) error {
	flash.Write(c.Response(), notice, r.secureCookies)
	return c.Redirect(http.StatusSeeOther, path)
}

func (r responder) sessionExpired(c echo.Context) error {
	return r.redirect(c, middleware.LoginPath, flash.Info("Your session has expired. Please login again."))
}
