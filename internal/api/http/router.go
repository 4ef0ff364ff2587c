package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/support-console/internal/api/http/handlers"
	"github.com/spec-kit/support-console/internal/auth"
	"github.com/spec-kit/support-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Queue          *handlers.QueueHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireScope(auth.ScopeAgent))

	api.Get("/queue", cfg.Queue.List)
	api.Get("/queue/summary", cfg.Queue.Summary)
	api.Post("/queue/bulk/assign", cfg.Queue.BulkAssign)
	api.Post("/queue/bulk/escalate", cfg.Queue.BulkEscalate)

	api.Get("/notifications", cfg.Notifications.List)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Post("/from-chat", cfg.Tickets.ConvertChat)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/resolve", cfg.Tickets.Resolve)
	tickets.Post("/:id/escalate", cfg.Tickets.Escalate)
	tickets.Post("/:id/transfer", cfg.Tickets.Transfer)
	tickets.Post("/:id/tags", cfg.Tickets.AddTag)
	tickets.Delete("/:id/tags/:tag", cfg.Tickets.RemoveTag)
	tickets.Post("/:id/collaborators", cfg.Tickets.AddCollaborator)
	tickets.Post("/:id/merge", cfg.Tickets.Merge)
	tickets.Post("/:id/rating-request", cfg.Tickets.RequestRating)
	tickets.Post("/:id/rating", cfg.Tickets.Rate)
	tickets.Post("/:id/replies", cfg.Tickets.Reply)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)
	tickets.Post("/:id/waiting", cfg.Tickets.SetWaiting)
	tickets.Post("/:id/resume", cfg.Tickets.Resume)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Put("/:id/draft", cfg.Tickets.SaveDraft)
	tickets.Get("/:id/draft", cfg.Tickets.GetDraft)
	tickets.Delete("/:id/draft", cfg.Tickets.DiscardDraft)
}
