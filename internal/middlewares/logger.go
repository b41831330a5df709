package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. The /metrics scrape is skipped
// to keep the Prometheus poll out of the request log.
func RequestLogger(logger *zap.SugaredLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)
		status := c.Response().StatusCode()
		fields := []interface{}{
			"method", c.Method(),
			"path", c.Path(),
			"ip", c.IP(),
			"status", status,
			"latency", latency,
			"bytes", len(c.Response().Body()),
		}
		if err != nil {
			logger.Errorw("HTTP Request Error", append(fields, "error", err)...)
			return err
		}
		logger.Infow("HTTP Request", fields...)
		return nil
	}
}
