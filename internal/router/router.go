package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/kidlearn-api/internal/config"
	"github.com/noah-isme/kidlearn-api/internal/handler"
	"github.com/noah-isme/kidlearn-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LessonHandler       *handler.LessonHandler
	ChallengeHandler    *handler.ChallengeHandler
	TestHandler         *handler.TestHandler
	ContestHandler      *handler.ContestHandler
	LeaderboardHandler  *handler.LeaderboardHandler
	ProfileHandler      *handler.ProfileHandler
	AccessHandler       *handler.AccessHandler
	AdminContentHandler *handler.AdminContentHandler
	AdminGradingHandler *handler.AdminGradingHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	authenticated := app.Group("/api/v1", jwtMiddleware)

	if deps.LessonHandler != nil {
		deps.LessonHandler.Register(authenticated)
	}
	if deps.ChallengeHandler != nil {
		deps.ChallengeHandler.Register(authenticated)
	}
	if deps.TestHandler != nil {
		deps.TestHandler.Register(authenticated)
	}
	if deps.ContestHandler != nil {
		deps.ContestHandler.Register(authenticated)
	}
	if deps.LeaderboardHandler != nil {
		deps.LeaderboardHandler.Register(authenticated)
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(authenticated)
	}
	if deps.AccessHandler != nil {
		deps.AccessHandler.Register(authenticated)
	}

	admin := app.Group("/api/admin", jwtMiddleware, middleware.RequireRole("admin", "evaluator"))
	if deps.AdminContentHandler != nil {
		deps.AdminContentHandler.Register(admin)
	}
	if deps.AdminGradingHandler != nil {
		deps.AdminGradingHandler.Register(admin)
	}
}
