package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kasku-go-api/internal/config"
	"github.com/noah-isme/kasku-go-api/internal/handler"
	"github.com/noah-isme/kasku-go-api/internal/middleware"
	"github.com/noah-isme/kasku-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	SessionHandler  *handler.SessionHandler
	AuditHandler    *handler.AuditHandler
	StudentHandler  *handler.StudentHandler
	PaymentHandler  *handler.PaymentHandler
	ExpenseHandler  *handler.ExpenseHandler
	EventHandler    *handler.EventHandler
	SettingsHandler *handler.SettingsHandler
	FundHandler     *handler.FundHandler

	Authenticate fiber.Handler
	AdminOnly    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Use(middleware.RateLimit(middleware.GeneralLimit))

	authenticate := deps.Authenticate
	if authenticate == nil {
		authenticate = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminOnly := deps.AdminOnly
	if adminOnly == nil {
		adminOnly = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth"), authenticate, adminOnly, handler.AuthLimits{
			Login:          middleware.RateLimit(middleware.LoginLimit),
			Register:       middleware.RateLimit(middleware.RegisterLimit),
			PasswordChange: middleware.RateLimit(middleware.PasswordChangeLimit),
		})
	}

	if deps.SessionHandler != nil {
		deps.SessionHandler.Register(api.Group("/sessions", authenticate))
	}

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api.Group("/audit-logs", authenticate), adminOnly)
	}

	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", authenticate), adminOnly)
	}

	if deps.PaymentHandler != nil {
		deps.PaymentHandler.Register(api.Group("/payments", authenticate), adminOnly)
	}

	if deps.ExpenseHandler != nil {
		deps.ExpenseHandler.Register(api.Group("/expenses", authenticate), adminOnly)
	}

	if deps.EventHandler != nil {
		deps.EventHandler.Register(api.Group("/events", authenticate), adminOnly)
	}

	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(api.Group("/settings", authenticate), adminOnly)
	}

	if deps.FundHandler != nil {
		deps.FundHandler.Register(api.Group("/fund", authenticate))
	}
}
