package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WebhookAuthMiddleware validates the bank gateway's Apikey authorization
// header. The rejection is still HTTP 200: gateways retry on non-2xx and an
// unauthorized retry can never succeed.
func WebhookAuthMiddleware(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Apikey") {
			return writeWebhookAuthError(c)
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(apiKey)) != 1 {
			return writeWebhookAuthError(c)
		}

		return c.Next()
	}
}

func writeWebhookAuthError(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": false,
		"message": "invalid api key",
	})
}
