package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every amount shown to the user.
const CurrencySymbol = "₹"

// Identity is the authenticated user's profile as last fetched from the backend.
// Balance is authoritative server state and is never adjusted locally.
type Identity struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Balance decimal.Decimal `json:"balance"`
}

// Initial returns the upper-cased first letter of the user's name.
func (i Identity) Initial() string {
	name := strings.TrimSpace(i.Name)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[:1]))
}

// FormatAmount renders an amount with the currency symbol and two decimals,
// e.g. "₹100.00".
func FormatAmount(amount decimal.Decimal) string {
	return CurrencySymbol + amount.StringFixed(2)
}

// SameEmail compares two email addresses ignoring case and surrounding spaces.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
