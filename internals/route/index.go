// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/configs"
	database "dancestudio_backend/internals/databases"
	authMiddleware "dancestudio_backend/internals/middlewares/auth"
	routeDetails "dancestudio_backend/internals/route/details"
	"dancestudio_backend/internals/services/notifications"
)

var startTime time.Time

// Deps are the long-lived collaborators shared by every route group.
type Deps struct {
	Compat    *database.SchemaCompat
	Notifier  notifications.Notifier
	JWTSecret string
}

func SetupRoutes(app *fiber.App, db *gorm.DB, deps Deps) {
	startTime = time.Now()

	if deps.JWTSecret == "" {
		deps.JWTSecret = configs.GetEnv("JWT_SECRET")
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.Noop{}
	}

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db, deps.Compat)

	// ===================== PRIVATE (JWT) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	api := app.Group("/api",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              deps.JWTSecret,
			AllowCookieFallback: true,
		}),
	)

	// ===================== MOUNT ROUTES =====================
	log.Println("[INFO] Mounting Studio routes...")
	routeDetails.StudioRoutes(api, db, deps.Compat, deps.Notifier)
}
