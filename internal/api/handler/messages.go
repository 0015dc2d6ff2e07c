package handler

import (
	"errors"
	"net/http"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

const (
	msgInvalidForm    = "Invalid form submission"
	msgInvalidAmount  = "Amount must be greater than 0"
	msgInsufficient   = "Insufficient balance"
	msgSelfTransfer   = "Cannot transfer to yourself"
	msgNoPending      = "This transfer has expired or was already submitted. Please start again."
	msgUnavailable    = "The wallet service is unavailable. Please try again."
	msgLoginOK        = "Login successful!"
	msgRegisterOK     = "Registration successful! Please login."
	msgLoggedOut      = "You have been logged out."
	msgTransferCancel = "Transfer cancelled."
)

// userMessage picks the text shown for err. Backend-supplied messages win over
// generic ones; fallback covers anything unclassified.
func userMessage(err error, fallback string) string {
	var fe *formError
	switch {
	case errors.As(err, &fe):
		return fe.msg
	case errors.Is(err, domain.ErrInvalidAmount):
		return msgInvalidAmount
	case errors.Is(err, domain.ErrSelfTransfer):
		return msgSelfTransfer
	case errors.Is(err, domain.ErrNoPendingTransfer):
		return msgNoPending
	}
	if msg, ok := domain.ServerMessage(err); ok {
		return msg
	}
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return msgInsufficient
	case errors.Is(err, domain.ErrNetwork):
		return msgUnavailable
	}
	return fallback
}

// statusFor picks the HTTP status of a page re-rendered after err.
func statusFor(err error) int {
	var fe *formError
	switch {
	case errors.As(err, &fe),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrSelfTransfer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
