// file: internals/features/studio/enrollments/route/enrollment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/enrollments/controller"
	"dancestudio_backend/internals/services/notifications"
)

// EnrollmentRoutes mounts under the authenticated /api group.
func EnrollmentRoutes(api fiber.Router, db *gorm.DB, notifier notifications.Notifier) {
	h := controller.NewEnrollmentController(db, notifier)

	api.Post("/enroll", h.Enroll)

	studio := api.Group("/studio/:studioId/waitlist")
	{
		studio.Get("/", h.ListWaitlist)
		studio.Patch("/:enrollmentId/accept", h.AcceptWaitlist)
	}
}
