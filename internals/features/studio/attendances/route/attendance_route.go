// file: internals/features/studio/attendances/route/attendance_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/attendances/controller"
)

// AttendanceRoutes mounts under the authenticated /api group. bulkGuard is
// applied to the batch write only.
func AttendanceRoutes(api fiber.Router, db *gorm.DB, compat *database.SchemaCompat, bulkGuard ...fiber.Handler) {
	h := controller.NewAttendanceController(db, compat)

	bulk := append(append([]fiber.Handler{}, bulkGuard...), h.BulkUpsert)
	api.Post("/attendances/bulk", bulk...)

	api.Get("/lessons/:lessonId/attendances", h.LessonView)
	api.Get("/enrollments/:enrollmentId/attendances", h.EnrollmentView)
}
