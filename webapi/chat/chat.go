package chat

import (
	"github.com/amirasaad/fxchat/pkg/chat"
	"github.com/amirasaad/fxchat/webapi/common"
	"github.com/gofiber/fiber/v2"
)

// Routes registers the chat session endpoints.
func Routes(app *fiber.App, bot *chat.Bot) {
	group := app.Group("/api/chat")
	group.Get("/", Greeting(bot))
	group.Post("/", Send(bot))
}

// Greeting returns the opening messages of the session.
func Greeting(bot *chat.Bot) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Session ready", toReply(bot, bot.Greeting()))
	}
}

// Send feeds one line of input to the bot.
func Send(bot *chat.Bot) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[MessageRequest](c)
		if input == nil {
			return err // error response already written
		}
		msgs := bot.Handle(c.UserContext(), input.Message)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Message handled", toReply(bot, msgs))
	}
}
