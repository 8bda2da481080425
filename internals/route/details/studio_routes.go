// file: internals/route/details/studio_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	absenceRoutes "dancestudio_backend/internals/features/studio/absences/route"
	attendanceRoutes "dancestudio_backend/internals/features/studio/attendances/route"
	compensationRoutes "dancestudio_backend/internals/features/studio/compensations/route"
	enrollmentRoutes "dancestudio_backend/internals/features/studio/enrollments/route"
	evaluationRoutes "dancestudio_backend/internals/features/studio/evaluations/route"
	payrollRoutes "dancestudio_backend/internals/features/studio/payrolls/route"
	timesheetRoutes "dancestudio_backend/internals/features/studio/timesheets/route"
	"dancestudio_backend/internals/middlewares"
	"dancestudio_backend/internals/services/notifications"
)

// StudioRoutes mounts every authenticated studio endpoint under api.
func StudioRoutes(api fiber.Router, db *gorm.DB, compat *database.SchemaCompat, notifier notifications.Notifier) {
	enrollmentRoutes.EnrollmentRoutes(api, db, notifier)
	attendanceRoutes.AttendanceRoutes(api, db, compat, middlewares.BulkWriteRateLimiter())
	absenceRoutes.AbsenceRoutes(api, db)
	timesheetRoutes.TimesheetRoutes(api, db, compat)
	payrollRoutes.PayrollRoutes(api, db, compat, notifier, middlewares.BulkWriteRateLimiter())
	compensationRoutes.CompensationRoutes(api, db)
	evaluationRoutes.EvaluationRoutes(api, db)
}
