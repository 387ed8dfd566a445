package middleware

import (
	"github.com/gofiber/fiber/v2"

	"feedbackbox/internal/auth"
)

// RequireAdmin gates protected routes behind a valid admin session. The
// check runs before any domain logic; requests without a live session are
// rejected with 401 through the app's error handler.
func RequireAdmin(a *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Cookies(auth.CookieName)
		if !a.Valid(id) {
			return fiber.ErrUnauthorized
		}
		return c.Next()
	}
}
