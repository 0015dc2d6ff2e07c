// Package sessioncookie owns the browser session cookie that keys a
// server-side auth session.
package sessioncookie

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Name is the session cookie name.
const Name = "wallet_session"

// Read returns the session ID when the cookie holds a well-formed UUID.
func Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if _, err := uuid.Parse(value); err != nil {
		return "", false
	}
	return value, true
}

// New returns a fresh session ID.
func New() string {
	return uuid.NewString()
}

// Write sets the session cookie.
func Write(w http.ResponseWriter, sessionID string, secure bool) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    strings.TrimSpace(sessionID),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func Clear(w http.ResponseWriter, secure bool) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
