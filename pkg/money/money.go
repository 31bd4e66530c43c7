// Package money holds the fixed-point arithmetic and number formatting
// shared by conversion and display.
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Places is the number of decimals every displayed amount carries.
const Places = 2

var (
	nonNumeric   = regexp.MustCompile(`[^\d.\-]`)
	numberPrefix = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

	// Locale drives digit grouping and the decimal separator.
	Locale = language.MustParse("es-AR")
)

// IsPositiveFinite reports whether v is a usable amount or rate.
func IsPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Convert returns amount / fromRate * toRate rounded to two places,
// half away from zero.
func Convert(amount, fromRate, toRate float64) (decimal.Decimal, error) {
	if !IsPositiveFinite(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if !IsPositiveFinite(fromRate) || !IsPositiveFinite(toRate) {
		return decimal.Zero, ErrInvalidRate
	}
	if fromRate == toRate {
		return decimal.NewFromFloat(amount).Round(Places), nil
	}
	base := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(fromRate))
	return base.Mul(decimal.NewFromFloat(toRate)).Round(Places), nil
}

// Round2 rounds v to two places, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Places).InexactFloat64()
}

// ParseNumber reads the longest numeric prefix of s, ignoring leading
// whitespace. "12.5abc" parses as 12.5.
func ParseNumber(s string) (float64, error) {
	prefix := numberPrefix.FindString(strings.TrimSpace(s))
	if prefix == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseAmount strips everything except digits, dots and minus signs from
// s and parses the result. The amount must be positive.
func ParseAmount(s string) (float64, error) {
	v, err := ParseNumber(nonNumeric.ReplaceAllString(s, ""))
	if err != nil {
		return 0, err
	}
	if !IsPositiveFinite(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseRate parses a user-supplied rate, which must be positive.
func ParseRate(s string) (float64, error) {
	v, err := ParseNumber(s)
	if err != nil || !IsPositiveFinite(v) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	return v, nil
}

// FormatNumber renders v with two decimals using Locale separators.
func FormatNumber(v float64) string {
	p := message.NewPrinter(Locale)
	return p.Sprint(number.Decimal(Round2(v), number.Scale(Places)))
}

// Format renders v prefixed by symbol, e.g. "US$ 1.234,50".
func Format(v float64, symbol string) string {
	if symbol == "" {
		return FormatNumber(v)
	}
	return symbol + " " + FormatNumber(v)
}
