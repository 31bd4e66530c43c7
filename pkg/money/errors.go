package money

import "errors"

var (
	// ErrInvalidAmount is returned for amounts that are not positive finite numbers.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidRate is returned for rates that are not positive finite numbers.
	ErrInvalidRate = errors.New("invalid rate")
)
