// Package common holds the response envelope, RFC 9457 problem details and
// request validation shared by every route group.
package common

import (
	"errors"

	"github.com/amirasaad/fxchat/pkg/conversion"
	"github.com/amirasaad/fxchat/pkg/currency"
	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/pkg/provider"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`         // HTTP status code
	Message string `json:"message"`        // Human-readable explanation
	Data    any    `json:"data,omitempty"` // Response data
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	Errors   any    `json:"errors,omitempty"`
}

var validate = validator.New()

// SuccessResponseJSON writes data in the standard envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes an application/problem+json response. The
// status comes from ErrorToStatusCode(err) unless an int is passed in
// args; a string in args becomes the detail, otherwise err's message is
// used. Any other value is reported under "errors".
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, args ...any) error {
	status := fiber.StatusInternalServerError
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			status = v
		case string:
			pd.Detail = v
		default:
			pd.Errors = v
		}
	}
	pd.Status = status

	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(status).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	var fiberErr *fiber.Error
	var timeoutErr *conversion.RateTimeoutError
	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.Is(err, conversion.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidRate),
		errors.Is(err, currency.ErrInvalidCurrencyCode),
		errors.Is(err, currency.ErrInvalidRate):
		return fiber.StatusBadRequest
	case errors.Is(err, conversion.ErrUnknownCurrency),
		errors.Is(err, currency.ErrCurrencyNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, currency.ErrDuplicateCurrency):
		return fiber.StatusConflict
	case errors.Is(err, currency.ErrImmutableRate):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &timeoutErr):
		return fiber.StatusGatewayTimeout
	case provider.IsRateFetchError(err):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body into T and validates it. On
// failure it writes the problem response and returns a nil pointer.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		return nil, ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
	}
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return nil, ProblemDetailsJSON(c, "Validation failed", err, fields, fiber.StatusBadRequest)
		}
		return nil, ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
	}
	return &input, nil
}
