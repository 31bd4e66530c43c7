// Package provider defines the port through which exchange rates enter the
// system and the immutable snapshot type they arrive in.
package provider

import "context"

// RateProvider fetches the latest rates from an upstream source.
type RateProvider interface {
	// Latest returns every rate the provider knows, expressed as units of
	// each currency per one unit of the base currency.
	Latest(ctx context.Context) (*RateSnapshot, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}
