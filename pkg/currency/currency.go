// Package currency maintains the set of currencies a session can convert
// between: rates sourced from the provider merged with currencies the user
// added by hand. User-defined currencies are persisted and never touched by
// provider refreshes.
package currency

import (
	"context"
	"errors"

	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/provider"
)

const (
	// ARSPerUSD pins the Argentine Peso to the provider's USD rate.
	ARSPerUSD = 1067.02
)

var (
	ErrDuplicateCurrency   = errors.New("currency already exists")
	ErrImmutableRate       = errors.New("rate of a provider currency cannot be changed")
	ErrCurrencyNotFound    = errors.New("currency not found")
	ErrInvalidCurrencyCode = errors.New("currency code must be exactly 3 letters")
	ErrInvalidRate         = errors.New("rate must be a number greater than 0")
)

// Currency is one addressable currency. Rate is units per one USD.
// The JSON field names are the persisted format of user-defined entries.
type Currency struct {
	Code     money.Code `json:"codigo"`
	Name     string     `json:"nombre"`
	Rate     float64    `json:"tasa"`
	IsCustom bool       `json:"isCustom"`
}

// RateSource provides the latest provider snapshot.
type RateSource interface {
	GetLatestRates(ctx context.Context, forceRefresh, suppressNotification bool) (*provider.RateSnapshot, error)
}

// fallback returns the set used when the provider cannot be reached.
func fallback() []Currency {
	return []Currency{
		{Code: money.USD, Name: "Dólar Estadounidense", Rate: 1},
		{Code: money.ARS, Name: "Peso Argentino", Rate: ARSPerUSD},
	}
}

// pinnedARS derives the ARS rate from a snapshot. A snapshot without USD
// is treated as USD-based.
func pinnedARS(snap *provider.RateSnapshot) float64 {
	usd, ok := snap.Rate(money.USD.String())
	if !ok || !money.IsPositiveFinite(usd) {
		usd = 1
	}
	return usd * ARSPerUSD
}
