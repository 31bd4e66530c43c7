// Package webapi exposes the converter over HTTP. It is organized into
// sub-packages per route group:
// - chat: the conversational session
// - conversion: one-shot conversions
// - currency: the currency registry and amount formatting
// - history: conversion history
// - rates: provider rates and engine status
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/fxchat/pkg/app"
	chatweb "github.com/amirasaad/fxchat/webapi/chat"
	"github.com/amirasaad/fxchat/webapi/common"
	conversionweb "github.com/amirasaad/fxchat/webapi/conversion"
	currencyweb "github.com/amirasaad/fxchat/webapi/currency"
	historyweb "github.com/amirasaad/fxchat/webapi/history"
	ratesweb "github.com/amirasaad/fxchat/webapi/rates"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp Initialize Fiber with custom configuration
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "fxchat",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	if rl := a.Config.RateLimit; rl != nil && rl.MaxRequests > 0 {
		fiberApp.Use(limiter.New(limiter.Config{
			Max:          rl.MaxRequests,
			Expiration:   rl.Window,
			KeyGenerator: clientKey,
			LimitReached: func(c *fiber.Ctx) error {
				return common.ProblemDetailsJSON(
					c,
					"Too Many Requests",
					errors.New("rate limit exceeded"),
					fiber.StatusTooManyRequests,
				)
			},
		}))
	}
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("fxchat is running! 💱")
	})

	chatweb.Routes(fiberApp, a.Bot)
	conversionweb.Routes(fiberApp, a.Converter, a.Currencies, a.History)
	currencyweb.Routes(fiberApp, a.Currencies)
	historyweb.Routes(fiberApp, a.History)
	ratesweb.Routes(fiberApp, a)
	return fiberApp
}

// clientKey identifies the caller for rate limiting. It prefers the first
// X-Forwarded-For hop, then X-Real-IP, then the peer address.
func clientKey(c *fiber.Ctx) string {
	if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
		if i := strings.Index(forwardedFor, ","); i != -1 {
			return strings.TrimSpace(forwardedFor[:i])
		}
		return strings.TrimSpace(forwardedFor)
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}
