package provider

import (
	"context"
	"maps"
	"time"

	"github.com/amirasaad/fxchat/pkg/provider"
)

// DefaultStaticRates is the rate table served by Static when none is given.
var DefaultStaticRates = map[string]float64{
	"USD": 1,
	"EUR": 0.92,
	"GBP": 0.79,
	"BRL": 5.05,
	"JPY": 149.5,
	"CNY": 7.24,
	"MXN": 17.1,
	"CLP": 940,
	"PEN": 3.75,
	"COP": 3950,
}

// Static serves a fixed rate table. It never fails and is meant for
// development without an API key.
type Static struct {
	rates map[string]float64
	now   func() time.Time
}

// NewStatic returns a provider serving rates, or DefaultStaticRates when
// rates is empty.
func NewStatic(rates map[string]float64) *Static {
	if len(rates) == 0 {
		rates = DefaultStaticRates
	}
	return &Static{rates: maps.Clone(rates), now: time.Now}
}

func (s *Static) Name() string {
	return "static"
}

func (s *Static) Latest(ctx context.Context) (*provider.RateSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, &provider.RateFetchError{Provider: s.Name(), Err: err}
	}
	return provider.NewRateSnapshot(s.now(), s.rates), nil
}

// Ensure Static implements provider.RateProvider
var _ provider.RateProvider = (*Static)(nil)
