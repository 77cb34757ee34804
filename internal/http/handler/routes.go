package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sharetome/docs"
	"sharetome/internal/http/middleware"
	"sharetome/internal/service"
)

// Deps are the collaborators the routes are wired to.
type Deps struct {
	DB       *sql.DB
	Tables   service.TableService
	Uploads  UploadPipeline
	Auth     AuthDeps
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Ops endpoints, pages and /api/auth are registered ahead of the route guard;
// everything after it requires a session cookie.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	app.Get("/", HomePage())
	app.Get(middleware.LoginPath, LoginPage(d.Auth.Providers))
	app.Get("/auth/error", AuthErrorPage())

	authAPI := app.Group("/api/auth", middleware.NoStore())
	authAPI.Get("/providers", ListProviders(d.Auth.Providers))
	authAPI.Get("/session", GetSession())
	authAPI.Get("/signin/:provider", SignIn(d.Auth))
	authAPI.Post("/signin/:provider", SignIn(d.Auth))
	authAPI.Get("/callback/:provider", OAuthCallback(d.Auth))
	authAPI.Post("/signout", SignOut(d.Auth))

	app.Use(middleware.RouteGuard())

	api := app.Group("/api", middleware.NoStore())

	api.Get("/tables", ListTables(d.Tables))
	api.Post("/tables", CreateTable(d.Tables))
	api.Get("/tables/:id", GetTable(d.Tables))
	api.Patch("/tables/:id/visibility", UpdateVisibility(d.Tables))
	api.Get("/tables/:id/documents", ListDocuments(d.Tables))

	api.Post("/uploads", OpenBatch(d.Tables, d.Uploads))
	api.Get("/uploads/:batch", GetBatch(d.Uploads))
	api.Delete("/uploads/:batch", DiscardBatch(d.Uploads))
	api.Post("/uploads/:batch/files", StageFiles(d.Uploads))
	api.Delete("/uploads/:batch/files/:file", RemoveFile(d.Uploads))
	api.Post("/uploads/:batch/submit", SubmitBatch(d.Uploads))
}
