// file: internals/features/studio/absences/controller/absence_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/absences/dto"
	"dancestudio_backend/internals/features/studio/absences/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type AbsenceController struct {
	DB      *gorm.DB
	Service *service.AbsenceService
}

func NewAbsenceController(db *gorm.DB) *AbsenceController {
	return &AbsenceController{DB: db, Service: service.NewAbsenceService(db)}
}

// GET /api/lesson-absences?lesson_id=  (staff)  |  ?program_id=  (own)
func (ctl *AbsenceController) List(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	lessonID, err := helperAuth.ParseUUIDQuery(c, "lesson_id")
	if err != nil {
		return err
	}
	programID, err := helperAuth.ParseUUIDQuery(c, "program_id")
	if err != nil {
		return err
	}

	if lessonID != nil {
		rows, err := ctl.Service.ListForLesson(c.UserContext(), caller, *lessonID)
		if err != nil {
			return helper.FromServiceError(c, "Absence", err)
		}
		return helper.JsonList(c, "ok", dto.FromModels(rows), int64(len(rows)))
	}

	rows, err := ctl.Service.ListOwn(c.UserContext(), caller, programID)
	if err != nil {
		return helper.FromServiceError(c, "Absence", err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), int64(len(rows)))
}

// POST /api/lesson-absences
func (ctl *AbsenceController) Create(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	var req dto.CreateAbsenceRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	in := service.CreateInput{LessonID: uuid.MustParse(req.LessonID), Reason: req.Reason}
	if req.EnrollmentID != nil {
		eid := uuid.MustParse(*req.EnrollmentID)
		in.EnrollmentID = &eid
	}

	row, created, err := ctl.Service.Create(c.UserContext(), caller, in)
	if err != nil {
		return helper.FromServiceError(c, "Absence", err)
	}
	if !created {
		return helper.JsonOK(c, "Absence already reported", dto.FromModel(row))
	}
	return helper.JsonCreated(c, "Absence reported", dto.FromModel(row))
}

// DELETE /api/lesson-absences/:id  (or ?id=)
func (ctl *AbsenceController) Delete(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	raw := strings.TrimSpace(c.Params("id"))
	if raw == "" {
		raw = strings.TrimSpace(c.Query("id"))
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid id")
	}

	if err := ctl.Service.Delete(c.UserContext(), caller, id); err != nil {
		return helper.FromServiceError(c, "Absence", err)
	}
	return helper.JsonDeleted(c, "Absence removed", fiber.Map{"id": id})
}
