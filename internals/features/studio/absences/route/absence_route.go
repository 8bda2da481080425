// file: internals/features/studio/absences/route/absence_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/absences/controller"
)

func AbsenceRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewAbsenceController(db)

	grp := api.Group("/lesson-absences")
	{
		grp.Get("/", h.List)
		grp.Post("/", h.Create)
		grp.Delete("/", h.Delete)
		grp.Delete("/:id", h.Delete)
	}
}
