package rates

import (
	"github.com/amirasaad/fxchat/pkg/app"
	"github.com/amirasaad/fxchat/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the rate and status endpoints.
func Routes(fiberApp *fiber.App, a *app.App) {
	fiberApp.Get("/api/rates", Latest(a))
	fiberApp.Post("/api/rates/refresh", Refresh(a))
	fiberApp.Get("/api/status", Status(a))
}

// Latest returns the cached snapshot, fetching one when the cache is cold.
func Latest(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := a.Rates.GetLatestRates(c.UserContext(), false, true)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to fetch rates", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates fetched successfully", snap)
	}
}

// Refresh forces a fetch and applies it to the registry.
func Refresh(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := a.Refresh(c.UserContext())
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to refresh rates", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rates refreshed successfully", snap)
	}
}

// Status reports the state of the engine.
func Status(a *app.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Status fetched successfully", a.Status())
	}
}
