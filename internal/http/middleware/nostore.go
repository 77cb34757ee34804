package middleware

import "github.com/gofiber/fiber/v2"

// NoStore marks responses as uncacheable. Mounted on routes whose bodies
// depend on the caller's session.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Next()
	}
}
