package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"feedbackbox/internal/auth"
	"feedbackbox/internal/http/middleware"
	"feedbackbox/internal/service"
	"feedbackbox/internal/storage"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. The public
// surface is the submission endpoint and the attachment files; everything
// touching stored comments sits behind the admin session.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.FeedbackService, store storage.Store, authn *auth.Authenticator) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health: checks DB connectivity. /healthz is a bare liveness probe.
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Anonymous submission endpoint.
	app.Post("/comments", SubmitComment(svc))

	// Stored attachments. Public so dashboard image tags need no auth dance.
	app.Get("/uploads/:name", ServeAttachment(store))

	// Admin session lifecycle.
	app.Post("/admin/login", AdminLogin(authn))
	app.Post("/admin/logout", AdminLogout(authn))

	// Everything that reads or mutates stored comments requires a session.
	// Guarded per route because POST /comments shares the prefix and must
	// stay anonymous.
	adminOnly := middleware.RequireAdmin(authn)
	app.Get("/comments", adminOnly, ListComments(svc))
	app.Get("/comments/:id", adminOnly, GetComment(svc))
	app.Delete("/comments/:id", adminOnly, DeleteComment(svc))
}
