package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// RouteGuard redirects requests without a session cookie to the login page,
// carrying the original URL as callbackUrl. It only checks that the cookie is
// present; the session loader and the backend decide whether it is valid.
//
// Auth endpoints, the login and auth error pages, and the root page are open.
func RouteGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isPublicPath(c.Path()) || c.Cookies(SessionCookie) != "" {
			return c.Next()
		}
		target := LoginPath + "?callbackUrl=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusFound)
	}
}

func isPublicPath(p string) bool {
	switch {
	case p == "/":
		return true
	case p == LoginPath, strings.HasPrefix(p, LoginPath+"/"):
		return true
	case p == "/auth/error", strings.HasPrefix(p, "/auth/error/"):
		return true
	case p == "/api/auth", strings.HasPrefix(p, "/api/auth/"):
		return true
	}
	return false
}
