package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNetwork means the backend could not be reached or answered with an
	// unreadable body.
	ErrNetwork = errors.New("wallet service unreachable")
	// ErrAuth means the backend rejected the credential (HTTP 401) or no
	// credential is held.
	ErrAuth = errors.New("authentication rejected")
	// ErrValidation means the backend refused the input (HTTP 400/404/409/422).
	ErrValidation = errors.New("request rejected")
	// ErrInsufficientBalance is raised locally against the cached balance and
	// by the backend on transfer.
	ErrInsufficientBalance = errors.New("insufficient balance")

	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrSelfTransfer      = errors.New("cannot transfer to yourself")
	ErrNoPendingTransfer = errors.New("no pending transfer")
)

// APIError is returned by the API client for every non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wallet api: %d: %s", e.Status, e.Message)
}

// Unwrap maps the HTTP status onto the error taxonomy so callers can use
// errors.Is with the sentinels above.
func (e *APIError) Unwrap() []error {
	switch e.Status {
	case http.StatusUnauthorized:
		return []error{ErrAuth}
	case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity:
		if strings.Contains(strings.ToLower(e.Message), "insufficient") {
			return []error{ErrValidation, ErrInsufficientBalance}
		}
		return []error{ErrValidation}
	}
	return nil
}

// ServerMessage returns the backend-supplied message of a 4xx response carried
// by err. Server-side failures never expose their text.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError {
		return "", false
	}
	msg := strings.TrimSpace(apiErr.Message)
	return msg, msg != ""
}
