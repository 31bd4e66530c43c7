package currency

import (
	"fmt"
	"strconv"

	"github.com/amirasaad/fxchat/pkg/currency"
	"github.com/amirasaad/fxchat/pkg/money"
	"github.com/amirasaad/fxchat/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers HTTP routes for currency-related operations.
func Routes(app *fiber.App, registry *currency.Registry) {
	group := app.Group("/api/currencies")

	group.Get("/", ListCurrencies(registry))
	group.Get("/supported", ListSupportedCurrencies(registry))
	group.Get("/:code", GetCurrency(registry))
	group.Post("/", AddCurrency(registry))
	group.Put("/:code/rate", UpdateRate(registry))

	app.Get("/api/format", FormatAmount(registry))
}

// ListCurrencies returns every registered currency, USD first.
func ListCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all := registry.All()
		out := make([]Response, len(all))
		for i, cur := range all {
			out[i] = ToResponse(cur, registry)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currencies fetched successfully", out)
	}
}

// ListSupportedCurrencies returns the supported codes and the text the
// chat shows for them.
func ListSupportedCurrencies(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Supported currencies fetched successfully", fiber.Map{
			"codes": registry.SupportedCodes(),
			"text":  registry.SupportedText(),
		})
	}
}

// GetCurrency returns one currency by code.
func GetCurrency(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := money.NormalizeCode(c.Params("code"))
		if !code.IsValid() {
			return common.ProblemDetailsJSON(c, "Invalid currency code", currency.ErrInvalidCurrencyCode)
		}
		cur, ok := registry.Lookup(code.String())
		if !ok {
			return common.ProblemDetailsJSON(c, "Currency not found",
				fmt.Errorf("%w: %s", currency.ErrCurrencyNotFound, code))
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Currency fetched successfully", ToResponse(cur, registry))
	}
}

// AddCurrency registers a user-defined currency.
func AddCurrency(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[AddRequest](c)
		if input == nil {
			return err // error response already written
		}
		cur, err := registry.AddCurrency(c.UserContext(), input.Name, input.Code, input.Rate)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to add currency", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Currency added successfully", ToResponse(cur, registry))
	}
}

// UpdateRate changes the rate of a user-defined currency.
func UpdateRate(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[UpdateRateRequest](c)
		if input == nil {
			return err // error response already written
		}
		cur, err := registry.UpdateRate(c.UserContext(), c.Params("code"), input.Rate)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update rate", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate updated successfully", ToResponse(cur, registry))
	}
}

// FormatAmount renders ?amount= with the symbol of ?code=.
func FormatAmount(registry *currency.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("amount")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid amount", fmt.Errorf("%w: %q", money.ErrInvalidAmount, raw))
		}
		code := money.NormalizeCode(c.Query("code"))
		if !code.IsValid() {
			return common.ProblemDetailsJSON(c, "Invalid currency code", currency.ErrInvalidCurrencyCode)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Amount formatted", fiber.Map{
			"amount":    amount,
			"code":      code,
			"formatted": registry.FormatAmount(amount, code.String()),
		})
	}
}
