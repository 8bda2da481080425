// file: internals/middlewares/middlewares.go
package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"dancestudio_backend/internals/configs"
	"dancestudio_backend/internals/middlewares/logger"
)

// SetupMiddlewares registers the global chain in order.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(requestid.New())
	app.Use(logger.LoggerMiddleware(configs.GetEnv("APP_TIMEZONE", "Europe/Amsterdam")))
	app.Use(CorsMiddleware(configs.GetEnv("CORS_ORIGINS")))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(etag.New())
	if configs.IsProduction() {
		app.Use(GlobalRateLimiter())
	}
}
