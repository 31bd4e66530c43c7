package money

import "strings"

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// Currency codes the engine treats specially.
const (
	USD Code = "USD" // US Dollar, the rate base
	ARS Code = "ARS" // Argentine Peso, pinned to USD
	EUR Code = "EUR" // Euro
)

// NormalizeCode trims and uppercases a user-supplied code.
func NormalizeCode(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValid reports whether c is exactly three ASCII letters.
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		ch := c[i] | 0x20
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}
