package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/maitriconnect/maitri-api/internal/api/http/handlers"
	"github.com/maitriconnect/maitri-api/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Events      *handlers.EventsHandler
	Gate        *auth.Gate
	EventOwner  auth.OwnerLookup
	AuthLimiter fiber.Handler
	Metrics     nethttp.Handler
	UploadDir   string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}
	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir, fiber.Static{Browse: false, CacheDuration: -1})
	}

	limited := cfg.AuthLimiter
	if limited == nil {
		limited = func(c *fiber.Ctx) error { return c.Next() }
	}
	authenticated := cfg.Gate.Authenticate
	admin := cfg.Gate.Require(auth.RequireAdmin)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", limited, cfg.Auth.Register)
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/forgot-password", limited, cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", limited, cfg.Auth.ResetPassword)
	authGroup.Get("/profile", authenticated, cfg.Auth.Profile)
	authGroup.Put("/profile", authenticated, cfg.Auth.UpdateProfile)
	authGroup.Put("/password", authenticated, cfg.Auth.ChangePassword)

	// fixed paths go before /:id
	events := app.Group("/events")
	events.Get("/", cfg.Events.ListPublic)
	events.Post("/", authenticated, cfg.Events.Create)
	events.Get("/user", authenticated, cfg.Events.ListOwned)
	events.Get("/admin/all", authenticated, admin, cfg.Events.ListAll)
	events.Delete("/admin/:id", authenticated, admin, cfg.Events.DeleteAdmin)
	events.Get("/:id", cfg.Events.Get)
	events.Put("/:id/status", authenticated, admin, cfg.Events.SetStatus)
	events.Put("/:id", authenticated,
		cfg.Gate.Require(auth.RequireOwner(cfg.EventOwner, "Not authorized to edit this event")),
		cfg.Events.Update)
	events.Delete("/:id", authenticated,
		cfg.Gate.Require(auth.RequireOwner(cfg.EventOwner, "Not authorized or event not found")),
		cfg.Events.Delete)
}
