// file: internals/route/base_routes.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/configs"
	database "dancestudio_backend/internals/databases"
)

// BaseRoutes mounts the unauthenticated probes.
func BaseRoutes(app *fiber.App, db *gorm.DB, compat *database.SchemaCompat) {
	app.Get("/health", func(c *fiber.Ctx) error {
		status, httpStatus := "OK", fiber.StatusOK
		dbStatus := "Connected"
		if err := database.Ping(db); err != nil {
			status, httpStatus = "DOWN", fiber.StatusServiceUnavailable
			dbStatus = "Database connection error"
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         status,
			"database":       dbStatus,
			"schema":         compat.Snapshot(),
			"server_time":    time.Now().In(configs.Location()).Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
			"environment":    configs.GetEnv("APP_ENV"),
		})
	})
}
