package handler

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"sharetome/internal/auth"
	"sharetome/internal/http/middleware"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.}} | ShareTome</title>
</head>
<body>{{end}}

{{define "login"}}{{template "head" "Sign in"}}
  <h1>Sign in to ShareTome</h1>
  <ul>
  {{- range .Providers}}
    <li><form method="post" action="{{.Href}}"><button type="submit">Sign in with {{.Name}}</button></form></li>
  {{- else}}
    <li>No sign-in providers are configured.</li>
  {{- end}}
  </ul>
</body>
</html>{{end}}

{{define "error"}}{{template "head" "Authentication error"}}
  <h1>Authentication error</h1>
  <p>{{.Message}}</p>
  <a href="/login">Return to login</a>
</body>
</html>{{end}}

{{define "home"}}{{template "head" "ShareTome"}}
  <h1>ShareTome</h1>
  {{- if .Email}}
  <p>Signed in as {{.Email}}.</p>
  <form method="post" action="/api/auth/signout"><button type="submit">Sign out</button></form>
  {{- else}}
  <p><a href="/login">Sign in</a> to manage your tables.</p>
  {{- end}}
</body>
</html>{{end}}
`))

type loginLink struct {
	Name string
	Href string
}

// LoginPage godoc
// @Summary Sign-in page listing the configured providers
// @Tags pages
// @Produce html
// @Param callbackUrl query string false "where to go after signing in"
// @Success 200
// @Router /login [get]
func LoginPage(providers *auth.Providers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callback := auth.SafeCallback(c.Query("callbackUrl"))
		links := make([]loginLink, 0, providers.Len())
		for _, p := range providers.Ordered() {
			cb := callback
			// OAuth sign-ins default to the dashboard, the dev credential to the home page.
			if p.Type() == auth.TypeOAuth && c.Query("callbackUrl") == "" {
				cb = "/dashboard"
			}
			links = append(links, loginLink{
				Name: p.Name(),
				Href: "/api/auth/signin/" + url.PathEscape(p.ID()) + "?callbackUrl=" + url.QueryEscape(cb),
			})
		}
		return renderPage(c, "login", fiber.Map{"Providers": links})
	}
}

// AuthErrorPage godoc
// @Summary Explains why a sign-in failed
// @Tags pages
// @Produce html
// @Param error query string false "error code"
// @Success 200
// @Router /auth/error [get]
func AuthErrorPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderPage(c, "error", fiber.Map{"Message": authErrorMessage(c.Query("error"))})
	}
}

// HomePage renders the landing page.
func HomePage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := fiber.Map{}
		if sess := middleware.SessionFromCtx(c); sess != nil {
			data["Email"] = sess.Email
		}
		return renderPage(c, "home", data)
	}
}

func authErrorMessage(code string) string {
	switch code {
	case errAccessDenied:
		return "You do not have permission to access this resource"
	case errConfiguration:
		return "There is a problem with the server configuration"
	default:
		return "An error occurred during authentication"
	}
}

func renderPage(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}
