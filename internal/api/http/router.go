package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/api/http/handlers"
	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Integrations   *handlers.IntegrationsHandler
	Users          *handlers.UsersHandler
	Preferences    *handlers.PreferencesHandler
	Templates      *handlers.TemplatesHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireRole())

	tickets := api.Group("/tickets")
	tickets.Get("/dashboard", cfg.Tickets.Dashboard)
	tickets.Get("/activity", cfg.Tickets.RecentActivity)
	tickets.Get("/archived", cfg.Tickets.ListArchived)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)

	api.Get("/chemicals/:cas", cfg.Integrations.ChemicalLookup)
	api.Get("/enterprise/search", auth.RequireRole(domain.RolePMOps, domain.RoleAdmin), cfg.Integrations.EnterpriseSearch)

	api.Get("/preferences", cfg.Preferences.Get)
	api.Put("/preferences", cfg.Preferences.Update)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Post("/users", cfg.Users.Create)
	admin.Get("/users", cfg.Users.List)
	admin.Get("/users/:id", cfg.Users.Get)
	admin.Delete("/users/:id", cfg.Users.Deactivate)

	admin.Post("/templates", cfg.Templates.Create)
	admin.Get("/templates", cfg.Templates.List)
	admin.Get("/templates/:id", cfg.Templates.Get)
	admin.Put("/templates/:id", cfg.Templates.Update)

	admin.Get("/settings", cfg.Settings.Get)
	admin.Put("/settings", cfg.Settings.Update)
}
