// file: internals/features/studio/compensations/route/compensation_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/compensations/controller"
)

func CompensationRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewCompensationController(db)

	grp := api.Group("/studio/:studioId/teacher-compensation")
	{
		grp.Get("/:teacherId", h.Get)
		grp.Put("/:teacherId", h.Put)
	}
}
