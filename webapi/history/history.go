package history

import (
	"github.com/amirasaad/fxchat/pkg/history"
	"github.com/amirasaad/fxchat/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the history endpoints.
func Routes(app *fiber.App, hist *history.Store) {
	group := app.Group("/api/history")
	group.Get("/", List(hist))
	group.Delete("/", Clear(hist))
}

// List returns the history, newest first.
func List(hist *history.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "History fetched successfully", fiber.Map{
			"entries":    hist.List(),
			"maxEntries": hist.Max(),
		})
	}
}

// Clear empties the history.
func Clear(hist *history.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := hist.Clear(c.UserContext()); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to clear history", err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
