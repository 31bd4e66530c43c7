// Package conversion converts amounts between registered currencies.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/shopspring/decimal"
)

// DefaultLookupTimeout bounds each rate lookup.
const DefaultLookupTimeout = 5 * time.Second

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
)

// RateTimeoutError reports a rate lookup that did not answer in time.
type RateTimeoutError struct {
	Code    money.Code
	Timeout time.Duration
}

func (e *RateTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s looking up the rate for %s", e.Timeout, e.Code)
}

// UnknownCurrencyError reports a code the rate lookup could not resolve.
// It matches ErrUnknownCurrency with errors.Is.
type UnknownCurrencyError struct {
	Code money.Code
	Err  error
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrUnknownCurrency, e.Code, e.Err)
}

func (e *UnknownCurrencyError) Is(target error) bool {
	return target == ErrUnknownCurrency
}

func (e *UnknownCurrencyError) Unwrap() error {
	return e.Err
}

// RateLookup resolves the rate of one currency code.
type RateLookup interface {
	Rate(ctx context.Context, code string) (float64, error)
}

// Result is a completed conversion.
type Result struct {
	Amount    float64         `json:"amount"`
	Result    decimal.Decimal `json:"result"`
	From      money.Code      `json:"from"`
	To        money.Code      `json:"to"`
	FromRate  float64         `json:"fromRate"`
	ToRate    float64         `json:"toRate"`
	Timestamp time.Time       `json:"timestamp"`
}

// ResultFloat returns Result as a float64.
func (r *Result) ResultFloat() float64 {
	return r.Result.InexactFloat64()
}

// ExchangeRate is the number of To units one From unit buys.
func (r *Result) ExchangeRate() float64 {
	return r.ToRate / r.FromRate
}

// Engine converts amounts using rates from a RateLookup.
type Engine struct {
	rates   RateLookup
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates an Engine. A non-positive timeout uses
// DefaultLookupTimeout.
func NewEngine(rates RateLookup, timeout time.Duration, logger *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &Engine{
		rates:   rates,
		timeout: timeout,
		logger:  logger.With("component", "conversion"),
		now:     time.Now,
	}
}

// Convert converts amount from one currency to another. The result is
// amount / fromRate * toRate rounded to two places.
func (e *Engine) Convert(ctx context.Context, amount float64, from, to string) (*Result, error) {
	if !money.IsPositiveFinite(amount) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	fromCode, toCode := money.NormalizeCode(from), money.NormalizeCode(to)

	fromRate, err := e.lookup(ctx, fromCode)
	if err != nil {
		return nil, err
	}
	toRate, err := e.lookup(ctx, toCode)
	if err != nil {
		return nil, err
	}

	result, err := money.Convert(amount, fromRate, toRate)
	if err != nil {
		return nil, fmt.Errorf("convert %s to %s: %w", fromCode, toCode, err)
	}

	e.logger.Debug("Converted", "amount", amount, "from", fromCode, "to", toCode, "result", result)
	return &Result{
		Amount:    amount,
		Result:    result,
		From:      fromCode,
		To:        toCode,
		FromRate:  fromRate,
		ToRate:    toRate,
		Timestamp: e.now().UTC(),
	}, nil
}

type lookupResult struct {
	rate float64
	err  error
}

func (e *Engine) lookup(ctx context.Context, code money.Code) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan lookupResult, 1)
	go func() {
		rate, err := e.rates.Rate(ctx, code.String())
		done <- lookupResult{rate: rate, err: err}
	}()

	select {
	case res := <-done:
		switch {
		case res.err == nil:
			return res.rate, nil
		case errors.Is(res.err, context.DeadlineExceeded):
			return 0, &RateTimeoutError{Code: code, Timeout: e.timeout}
		case errors.Is(res.err, context.Canceled):
			return 0, res.err
		}
		return 0, &UnknownCurrencyError{Code: code, Err: res.err}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			e.logger.Warn("Rate lookup timed out", "code", code, "timeout", e.timeout)
			return 0, &RateTimeoutError{Code: code, Timeout: e.timeout}
		}
		return 0, ctx.Err()
	}
}
