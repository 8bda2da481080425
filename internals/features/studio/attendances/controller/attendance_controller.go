// file: internals/features/studio/attendances/controller/attendance_controller.go
package controller

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/attendances/dto"
	"dancestudio_backend/internals/features/studio/attendances/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type AttendanceController struct {
	DB         *gorm.DB
	Reconciler *service.ReconcilerService
}

func NewAttendanceController(db *gorm.DB, compat *database.SchemaCompat) *AttendanceController {
	return &AttendanceController{
		DB:         db,
		Reconciler: service.NewReconcilerService(db, compat),
	}
}

// POST /api/attendances/bulk
// Body: {"rows":[{lesson_id,user_id,enrollment_id?,status,note?}]} or the bare array.
func (ctl *AttendanceController) BulkUpsert(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}

	var rows []dto.AttendanceRowRequest
	body := bytes.TrimSpace(c.Body())
	if len(body) > 0 && body[0] == '[' {
		if err := c.App().Config().JSONDecoder(body, &rows); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
		}
	} else {
		var req dto.BulkAttendanceRequest
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
		}
		rows = req.Rows
	}

	n, err := ctl.Reconciler.BulkUpsert(c.UserContext(), caller, rows)
	if err != nil {
		return helper.FromServiceError(c, "Attendance", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"ok":       true,
		"upserted": n,
	})
}

// GET /api/lessons/:lessonId/attendances
func (ctl *AttendanceController) LessonView(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	lessonID, err := helperAuth.ParseUUIDParam(c, "lessonId")
	if err != nil {
		return err
	}

	view, err := ctl.Reconciler.LessonView(c.UserContext(), caller, lessonID)
	if err != nil {
		return helper.FromServiceError(c, "Attendance", err)
	}
	return helper.JsonOK(c, "ok", view)
}

// GET /api/enrollments/:enrollmentId/attendances
func (ctl *AttendanceController) EnrollmentView(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	enrollmentID, err := helperAuth.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return err
	}

	rows, err := ctl.Reconciler.EnrollmentView(c.UserContext(), caller, enrollmentID)
	if err != nil {
		return helper.FromServiceError(c, "Attendance", err)
	}
	return helper.JsonList(c, "ok", rows, int64(len(rows)))
}
