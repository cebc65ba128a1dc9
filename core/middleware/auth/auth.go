// Package auth provides API key validation for protected routes.
package auth

import "github.com/gofiber/fiber/v2"

// Header carries the client's API key.
const Header = "X-Api-Key"

// New creates the API key middleware. An empty configured key disables
// authentication entirely.
func New(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if apiKey == "" {
			return c.Next()
		}
		if c.Get(Header) != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid api key",
			})
		}
		return c.Next()
	}
}
