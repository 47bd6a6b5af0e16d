package domain

import "strings"

// CurrencyPolicy lists the currencies a request may use and the fallback used
// when a draft carries no item to take the currency from.
type CurrencyPolicy struct {
	Base    string
	Allowed []string
}

// Normalize upper-cases and trims a currency code.
func (p CurrencyPolicy) Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsAllowed reports whether code (already normalized) is accepted.
// An empty allow-list accepts everything.
func (p CurrencyPolicy) IsAllowed(code string) bool {
	if len(p.Allowed) == 0 {
		return code != ""
	}
	for _, c := range p.Allowed {
		if strings.EqualFold(c, code) {
			return true
		}
	}
	return false
}
