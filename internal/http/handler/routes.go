package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docpress/internal/auth"
	"docpress/internal/http/middleware"
	"docpress/internal/service"
)

// Deps are the collaborators the routes are bound to.
type Deps struct {
	DB         *sql.DB
	Verifier   auth.Verifier
	Documents  service.DocumentService
	Changelogs service.ChangelogService
	Uploads    service.UploadService
	Users      service.UserService
	Sessions   *service.EditorSessions
	Metrics    prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay free of business logic; they translate between HTTP and services.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/docs", SwaggerUI())
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	pub := app.Group("/public")
	pub.Get("/docs", PublicDocuments(d.Documents))
	pub.Get("/docs/:slug", PublicDocument(d.Documents))

	api := app.Group("/api", middleware.RequireAuth(d.Verifier))
	api.Post("/users/sync", SyncUser(d.Users))

	api.Get("/documents", ListDocuments(d.Documents))
	api.Post("/documents", CreateDocument(d.Documents))
	api.Get("/documents/:slug", GetDocument(d.Documents))
	api.Patch("/documents/:id", UpdateDocument(d.Documents))
	api.Delete("/documents/:id", DeleteDocument(d.Documents))

	api.Get("/documents/:id/changelogs", ListChangelogs(d.Changelogs))
	api.Post("/documents/:id/changelogs", CreateChangelog(d.Changelogs))
	api.Put("/changelogs/:id", UpdateChangelog(d.Changelogs))

	api.Post("/changelog/upload", UploadAttachment(d.Uploads))
	api.Post("/upload_image", UploadImage(d.Uploads))

	api.Post("/editor/sessions", OpenSession(d.Sessions))
	api.Get("/editor/sessions/:sid", GetSession(d.Sessions))
	api.Patch("/editor/sessions/:sid", EditSession(d.Sessions))
	api.Delete("/editor/sessions/:sid", CloseSession(d.Sessions))
}

// SwaggerUI serves a Swagger UI page for the generated spec.
func SwaggerUI() fiber.Handler {
	const page = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>docpress API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/swagger/doc.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
	return func(c *fiber.Ctx) error {
		return c.Type("html").SendString(page)
	}
}
