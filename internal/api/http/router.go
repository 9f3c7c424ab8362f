package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/http/handlers"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Tenants        *handlers.TenantsHandler
	JWKS           *handlers.JWKSHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/.well-known/jwks.json", cfg.JWKS.KeySet)

	mw := cfg.AuthMiddleware

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/self", mw.Authenticate, cfg.Auth.Self)
	authGroup.Post("/refresh", mw.ValidateRefreshToken, cfg.Auth.Refresh)
	authGroup.Post("/logout", mw.Authenticate, mw.ParseRefreshToken, cfg.Auth.Logout)

	users := app.Group("/users", mw.Authenticate, auth.RequireRoles(domain.RoleAdmin))
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.GetByID)
	users.Patch("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)

	tenants := app.Group("/tenants", mw.Authenticate)
	tenants.Post("/", auth.RequireRoles(domain.RoleAdmin), cfg.Tenants.Create)
	tenants.Get("/", auth.RequireRoles(domain.RoleAdmin, domain.RoleManager), cfg.Tenants.List)
	tenants.Get("/:id", auth.RequireRoles(domain.RoleAdmin, domain.RoleManager), cfg.Tenants.GetByID)
	tenants.Patch("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Tenants.Update)
	tenants.Delete("/:id", auth.RequireRoles(domain.RoleAdmin), cfg.Tenants.Delete)
}
