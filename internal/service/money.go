package service

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the given ISO 4217 currency, e.g. "$1,234.50".
// Unknown codes fall back to USD.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" || money.GetCurrency(code) == nil {
		code = money.USD
	}
	c := money.GetCurrency(code)
	minor := amount.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
