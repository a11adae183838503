package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/estatedesk/estate-service/internal/api/http/handlers"
	"github.com/estatedesk/estate-service/internal/auth"
	"github.com/estatedesk/estate-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Agents         *handlers.AgentsHandler
	Properties     *handlers.PropertiesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/forgot", cfg.Auth.ForgotPassword)
	authGroup.Post("/password/reset", cfg.Auth.ResetPassword)
	authGroup.Post("/agents/accept", cfg.Agents.Accept)

	protectedAuth := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	protectedAuth.Post("/password/change", cfg.Auth.ChangePassword)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAdmin))
	admin.Post("/agents/invite", cfg.Agents.Invite)

	landlord := app.Group("/landlord", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleLandlord, domain.UserRoleAdmin))
	landlord.Post("/agents/approve", cfg.Agents.Approve)
	landlord.Post("/agents/assign", cfg.Agents.Assign)
	landlord.Post("/agents/remove", cfg.Agents.Suspend)
	landlord.Post("/agents/unsuspend", cfg.Agents.Unsuspend)
	landlord.Post("/properties", cfg.Properties.Create)
	landlord.Get("/properties", cfg.Properties.List)
	landlord.Get("/properties/:id", cfg.Properties.Get)
	landlord.Put("/properties/:id", cfg.Properties.Update)
	landlord.Delete("/properties/:id", cfg.Properties.Delete)
	landlord.Post("/leases", cfg.Properties.CreateLease)
	landlord.Post("/payments", cfg.Properties.RecordPayment)

	agent := app.Group("/agent", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAgent))
	agent.Get("/status", cfg.Agents.Status)
	agent.Get("/suspension", cfg.Agents.SuspensionDetail)
	agent.Get("/properties", cfg.Properties.ListForAgent)
}
