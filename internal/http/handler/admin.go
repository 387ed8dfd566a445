package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"feedbackbox/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

// AdminLogin checks the shared admin secret and, on success, sets the
// session cookie used by the protected routes.
func AdminLogin(a *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			req.Password = c.FormValue("password")
		}
		if req.Password == "" {
			req.Password = c.FormValue("password")
		}

		sess, err := a.Login(req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid password")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Cookie(&fiber.Cookie{
			Name:     auth.CookieName,
			Value:    sess.ID,
			Expires:  sess.ExpiresAt,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// AdminLogout invalidates the current session and clears the cookie.
func AdminLogout(a *auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := c.Cookies(auth.CookieName); id != "" {
			a.Logout(id)
		}
		c.Cookie(&fiber.Cookie{
			Name:     auth.CookieName,
			Value:    "",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
