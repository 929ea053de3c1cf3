package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Scope checks are attached per route: group middleware in fiber applies
	// to every route sharing the prefix.
	admin := app.Group("/admin", cfg.AuthMiddleware.Handle)
	read := auth.RequireScope(auth.ScopeRead)
	write := auth.RequireScope(auth.ScopeWrite)

	admin.Get("/tickets", read, cfg.Tickets.ListTickets)
	admin.Get("/tickets/orphans", read, cfg.Tickets.ListOrphans)
	admin.Get("/tickets/:id", read, cfg.Tickets.GetTicket)
	admin.Get("/metrics", read, cfg.Tickets.Metrics)
	admin.Post("/panel/reconcile", write, cfg.Tickets.ReconcilePanel)
}
