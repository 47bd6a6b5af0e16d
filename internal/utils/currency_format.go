package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with two decimals and spaces as thousands separators.
// Example: 1250000.5 returns "1 250 000.50"
func FormatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}

// FormatMoney renders an amount followed by its currency code, e.g. "1 250.75 USD".
func FormatMoney(amount decimal.Decimal, currency string) string {
	return FormatAmount(amount) + " " + currency
}
