package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/vutran-dev/platform-ads/internal/handlers"
	"github.com/vutran-dev/platform-ads/internal/metrics"
	"github.com/vutran-dev/platform-ads/internal/middlewares"
	"github.com/vutran-dev/platform-ads/internal/models"
	"github.com/vutran-dev/platform-ads/internal/utils"
)

// Setup registers all routes. Role requirements are declared here, at
// registration time; routes without a RequireRoles call are public.
func Setup(
	app *fiber.App,
	authH *handlers.AuthHandler,
	userH *handlers.UserHandler,
	videoH *handlers.VideoHandler,
	auth *middlewares.Authenticator,
	limiter *middlewares.RateLimiter,
	appName, appVersion string,
) {
	app.Get("/", func(c *fiber.Ctx) error {
		return utils.SuccessResponse(c, fiber.StatusOK, "Welcome to "+appName,
			fiber.Map{"app": appName, "version": appVersion})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth", limiter.ByIP())
	authGroup.Post("/signup", authH.SignUp)
	authGroup.Post("/signin", authH.SignIn)
	authGroup.Post("/refresh", authH.Refresh)
	authGroup.Get("/verify-email", authH.VerifyEmail)
	authGroup.Post("/logout", auth.RequireRoles(models.RoleAdmin, models.RoleUser), authH.LogOut)

	users := api.Group("/users")
	users.Post("/", auth.RequireRoles(models.RoleAdmin), userH.Create)
	users.Get("/", auth.RequireRoles(models.RoleAdmin), userH.List)
	users.Patch("/", auth.RequireRoles(models.RoleAdmin), userH.Update)
	users.Get("/profile", auth.RequireRoles(models.RoleAdmin, models.RoleUser), userH.Profile)
	users.Get("/:id", auth.RequireRoles(models.RoleAdmin), userH.Get)
	users.Delete("/:id", auth.RequireRoles(models.RoleAdmin), userH.Delete)

	videos := api.Group("/videos")
	videos.Get("/", videoH.List)
	videos.Get("/:id", videoH.Get)
	videos.Post("/", auth.RequireRoles(models.RoleAdmin), videoH.Create)
}
