package handler

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"sharetome/internal/auth"
	"sharetome/internal/http/middleware"
	"sharetome/internal/model"
	"sharetome/internal/service"
)

const (
	stateCookie = "sharetome_oauth_state"

	errAccessDenied  = "AccessDenied"
	errConfiguration = "Configuration"
)

// CookieConfig controls the session and OAuth state cookies. Session cookies
// expire together with the session they carry.
type CookieConfig struct {
	Secure bool
}

// AuthDeps are the collaborators of the /api/auth endpoints.
type AuthDeps struct {
	Providers *auth.Providers
	States    *auth.StateCodec
	Sessions  service.SessionService
	Cookies   CookieConfig
	Log       zerolog.Logger
}

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionResponse struct {
	User    sessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// ListProviders godoc
// @Summary Configured sign-in providers
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]auth.ProviderInfo
// @Router /api/auth/providers [get]
func ListProviders(providers *auth.Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(providers.List())
	}
}

// SignIn godoc
// @Summary Start signing in with a provider
// @Description OAuth providers redirect to the provider's consent page; the credentials provider signs in immediately and only accepts POST.
// @Tags auth
// @Param provider path string true "provider id"
// @Param callbackUrl query string false "where to go after signing in"
// @Success 302
// @Failure 405 {object} errorPayload
// @Router /api/auth/signin/{provider} [get]
// @Router /api/auth/signin/{provider} [post]
func SignIn(d AuthDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pr, err := d.Providers.Get(c.Params("provider"))
		if err != nil {
			return redirectAuthError(c, errConfiguration)
		}
		callback := auth.SafeCallback(c.Query("callbackUrl"))

		switch p := pr.(type) {
		case auth.CredentialsProvider:
			if c.Method() != fiber.MethodPost {
				return writeError(c, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "credentials sign-in requires POST")
			}
			id, err := p.Authorize(c.UserContext())
			if err != nil {
				return redirectAuthError(c, errAccessDenied)
			}
			if err := startSession(c, d, id); err != nil {
				return redirectAuthError(c, errConfiguration)
			}
			return c.Redirect(callback, fiber.StatusFound)

		case auth.OAuthProvider:
			state, err := d.States.Issue(auth.State{Provider: p.ID(), CallbackURL: callback})
			if err != nil {
				d.Log.Error().Err(err).Msg("issue oauth state")
				return redirectAuthError(c, errConfiguration)
			}
			c.Cookie(&fiber.Cookie{
				Name:     stateCookie,
				Value:    state,
				Path:     "/api/auth",
				MaxAge:   int(auth.StateTTL.Seconds()),
				HTTPOnly: true,
				Secure:   d.Cookies.Secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
			return c.Redirect(p.AuthCodeURL(state), fiber.StatusFound)
		}
		return redirectAuthError(c, errConfiguration)
	}
}

// OAuthCallback godoc
// @Summary Finish an OAuth sign-in
// @Tags auth
// @Param provider path string true "provider id"
// @Param code query string true "authorization code"
// @Param state query string true "state issued at sign-in"
// @Success 302
// @Router /api/auth/callback/{provider} [get]
func OAuthCallback(d AuthDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pr, err := d.Providers.Get(c.Params("provider"))
		if err != nil {
			return redirectAuthError(c, errConfiguration)
		}
		p, ok := pr.(auth.OAuthProvider)
		if !ok {
			return redirectAuthError(c, errConfiguration)
		}

		storedState := c.Cookies(stateCookie)
		c.ClearCookie(stateCookie)

		if e := c.Query("error"); e != "" {
			d.Log.Info().Str("provider", p.ID()).Str("oauth_error", e).Msg("provider refused sign-in")
			return redirectAuthError(c, errAccessDenied)
		}

		st, err := d.States.Verify(c.Query("state"), storedState, p.ID())
		if err != nil {
			d.Log.Warn().Err(err).Str("provider", p.ID()).Msg("oauth state rejected")
			return redirectAuthError(c, errAccessDenied)
		}

		id, err := p.Identify(c.UserContext(), c.Query("code"))
		if err != nil {
			d.Log.Warn().Err(err).Str("provider", p.ID()).Msg("oauth identify failed")
			return redirectAuthError(c, errAccessDenied)
		}
		if err := startSession(c, d, id); err != nil {
			return redirectAuthError(c, errConfiguration)
		}
		return c.Redirect(st.CallbackURL, fiber.StatusFound)
	}
}

// SignOut godoc
// @Summary End the current session
// @Tags auth
// @Success 302
// @Router /api/auth/signout [post]
func SignOut(d AuthDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := c.Cookies(middleware.SessionCookie); token != "" {
			if err := d.Sessions.Delete(c.UserContext(), token); err != nil {
				d.Log.Warn().Err(err).Msg("delete session")
			}
		}
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   d.Cookies.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect(middleware.LoginPath, fiber.StatusFound)
	}
}

// GetSession godoc
// @Summary The signed-in user, or an empty object
// @Tags auth
// @Produce json
// @Success 200 {object} sessionResponse
// @Router /api/auth/session [get]
func GetSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		if sess == nil {
			return c.JSON(fiber.Map{})
		}
		return c.JSON(sessionResponse{
			User:    sessionUser{Email: sess.Email, Name: sess.Name},
			Expires: sess.ExpiresAt,
		})
	}
}

func startSession(c *fiber.Ctx, d AuthDeps, id model.Identity) error {
	sess, err := d.Sessions.Create(c.UserContext(), id)
	if err != nil {
		d.Log.Error().Err(err).Str("provider", id.Provider).Msg("create session")
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		Secure:   d.Cookies.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	d.Log.Info().Str("provider", id.Provider).Str("user", sess.Email).Msg("signed in")
	return nil
}

func redirectAuthError(c *fiber.Ctx, code string) error {
	return c.Redirect("/auth/error?error="+url.QueryEscape(code), fiber.StatusFound)
}
