package handler

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/digitalwallet/wallet-web/internal/core/domain"
)

type loginForm struct {
	Email    string `form:"email" validate:"required,email" label:"email"`
	Password string `form:"password" validate:"required" label:"password"`
}

type registerForm struct {
	Name     string `form:"name" validate:"required,max=100" label:"full name"`
	Email    string `form:"email" validate:"required,email" label:"email"`
	Password string `form:"password" validate:"required,min=6" label:"password"`
}

type addMoneyForm struct {
	Amount string `form:"amount" validate:"required" label:"amount"`
}

type transferForm struct {
	ToEmail string `form:"to_email" validate:"required,email" label:"recipient email"`
	Amount  string `form:"amount" validate:"required" label:"amount"`
}

type confirmForm struct {
	PendingID string `form:"pending_id" validate:"required,uuid" label:"transfer"`
}

func (f *loginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *registerForm) normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
}

func (f *transferForm) normalize() {
	f.ToEmail = strings.TrimSpace(f.ToEmail)
	f.Amount = strings.TrimSpace(f.Amount)
}

// parseAmount reads a decimal amount with at most two decimal places. The
// sign is left to the wallet service so non-positive values are rejected in
// one place.
func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || (d.Exponent() < -2 && !d.Equal(d.Round(2))) {
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}
	return d, nil
}
