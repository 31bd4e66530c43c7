package provider

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload indicates the provider answered with a body that
// lacks a usable "data" object.
var ErrMalformedPayload = errors.New("malformed rate payload")

// RateFetchError reports a failure reaching the provider: a network error,
// a non-success HTTP status or a malformed body. It is always recoverable
// by falling back to cached or default rates.
type RateFetchError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RateFetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *RateFetchError) Unwrap() error {
	return e.Err
}

// IsRateFetchError reports whether err is or wraps a *RateFetchError.
func IsRateFetchError(err error) bool {
	var fetchErr *RateFetchError
	return errors.As(err, &fetchErr)
}
