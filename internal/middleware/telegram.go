package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// TelegramAuthMiddleware checks the secret token Telegram echoes back on
// every webhook delivery. An empty secret disables the check.
func TelegramAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}

		provided := c.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid webhook secret")
		}

		return c.Next()
	}
}
