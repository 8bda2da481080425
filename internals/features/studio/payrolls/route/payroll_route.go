// file: internals/features/studio/payrolls/route/payroll_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/payrolls/controller"
	"dancestudio_backend/internals/services/notifications"
)

// PayrollRoutes mounts the payroll endpoints; runGuard wraps payroll creation.
func PayrollRoutes(api fiber.Router, db *gorm.DB, compat *database.SchemaCompat, notifier notifications.Notifier, runGuard ...fiber.Handler) {
	h := controller.NewPayrollController(db, compat, notifier)

	grp := api.Group("/studio/:studioId/payrolls")
	{
		grp.Get("/", h.List)
		grp.Post("/", append(append([]fiber.Handler{}, runGuard...), h.Create)...)
		grp.Patch("/:payrollId", h.UpdateStatus)
	}
}
