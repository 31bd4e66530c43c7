package conversion

import (
	"github.com/amirasaad/fxchat/pkg/chat"
	"github.com/amirasaad/fxchat/pkg/conversion"
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the conversion endpoint.
func Routes(
	app *fiber.App,
	engine *conversion.Engine,
	currencies chat.Currencies,
	hist *history.Store,
) {
	app.Post("/api/conversions", Convert(engine, currencies, hist))
}

// Convert runs a conversion and records it in the history.
func Convert(
	engine *conversion.Engine,
	currencies chat.Currencies,
	hist *history.Store,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[ConvertRequest](c)
		if input == nil {
			return err // error response already written
		}

		res, err := engine.Convert(c.UserContext(), input.Amount, input.From, input.To)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Conversion failed", err)
		}

		rec, err := hist.Append(c.UserContext(), chat.ConversionRecord(currencies, res))
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to record conversion", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Conversion completed", ConvertResponse{
			Record:       rec,
			ExchangeRate: res.ExchangeRate(),
		})
	}
}
