// file: internals/features/studio/timesheets/route/timesheet_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/timesheets/controller"
)

func TimesheetRoutes(api fiber.Router, db *gorm.DB, compat *database.SchemaCompat) {
	h := controller.NewTimesheetController(db, compat)

	grp := api.Group("/studio/:studioId/timesheets")
	{
		grp.Get("/", h.List)
		grp.Post("/", h.Create)
		grp.Get("/:timesheetId", h.Get)
		grp.Patch("/:timesheetId", h.UpdateStatus)
		grp.Delete("/:timesheetId", h.Delete)
		grp.Post("/:timesheetId/entries", h.AddEntry)
		grp.Delete("/:timesheetId/entries/:entryId", h.DeleteEntry)
	}
}
