package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hoodmarket/ticket-bot/internal/api/http/handlers"
	"github.com/hoodmarket/ticket-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Intents        *handlers.IntentsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/intents", cfg.Intents.Receive)

	admin := app.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)

	protected := admin.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleAdmin))
	protected.Post("/panel", cfg.Admin.PublishPanel)
	protected.Post("/reset", cfg.Admin.ResetTickets)
}
