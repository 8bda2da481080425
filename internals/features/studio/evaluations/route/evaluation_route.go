// file: internals/features/studio/evaluations/route/evaluation_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/evaluations/controller"
)

func EvaluationRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewEvaluationController(db)

	grp := api.Group("/studio/:studioId")
	{
		grp.Get("/evaluation-settings", h.GetSettings)
		grp.Put("/evaluation-settings", h.PutSettings)
		grp.Get("/evaluations", h.List)
		grp.Put("/evaluations", h.Upsert)
	}
}
