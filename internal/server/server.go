package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/vutran-dev/platform-ads/internal/config"
	"github.com/vutran-dev/platform-ads/internal/middlewares"
	"github.com/vutran-dev/platform-ads/internal/services"
	"github.com/vutran-dev/platform-ads/internal/utils"
	"go.uber.org/zap"
)

// New builds the Fiber application with global middlewares and the central
// error handler.
func New(cfg *config.Config, logger *zap.SugaredLogger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
		ErrorHandler: errorHandler(logger),
	})

	app.Use(cors.New())
	app.Use(middlewares.RequestLogger(logger))

	return app
}

// errorHandler maps expected business failures to their HTTP status; only
// genuinely unexpected faults surface as 500s.
func errorHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			status = fe.Code
			message = fe.Message
		case errors.Is(err, services.ErrAlreadyRegistered),
			errors.Is(err, services.ErrEmailTaken),
			errors.Is(err, services.ErrPhoneTaken):
			status = fiber.StatusConflict
			message = err.Error()
		case errors.Is(err, services.ErrInvalidCredentials),
			errors.Is(err, services.ErrNotActivated),
			errors.Is(err, services.ErrInvalidRefreshToken):
			status = fiber.StatusUnauthorized
			message = err.Error()
		case errors.Is(err, services.ErrForbidden):
			status = fiber.StatusForbidden
			message = err.Error()
		case errors.Is(err, services.ErrResendThrottled):
			status = fiber.StatusTooManyRequests
			message = err.Error()
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrVerificationInvalid),
			errors.Is(err, services.ErrVideoNotFound):
			status = fiber.StatusNotFound
			message = err.Error()
		case errors.Is(err, services.ErrVerificationExpired),
			errors.Is(err, services.ErrAlreadyActivated):
			status = fiber.StatusBadRequest
			message = err.Error()
		default:
			logger.Errorw("unhandled error", "path", c.Path(), "error", err)
		}

		return utils.ErrorResponse(c, status, message, nil)
	}
}
