package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"sharetome/internal/model"
	"sharetome/internal/service"
)

const (
	// SessionCookie carries the opaque session token.
	SessionCookie = "sharetome_session"
	// SessionLocalKey is where the resolved session is stored in Fiber's context locals.
	SessionLocalKey = "session"
)

// SessionLookup resolves a session token.
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*model.Session, error)
}

// Session resolves the session cookie, if any, and stores the session in locals.
// Requests without a valid session continue anonymously.
func Session(lookup SessionLookup, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Next()
		}
		sess, err := lookup.Lookup(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals(SessionLocalKey, sess)
		case !errors.Is(err, service.ErrSessionNotFound):
			log.Warn().Err(err).Str("request_id", RequestIDFromCtx(c)).Msg("session lookup failed")
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session loaded by Session, or nil.
func SessionFromCtx(c *fiber.Ctx) *model.Session {
	sess, _ := c.Locals(SessionLocalKey).(*model.Session)
	return sess
}
