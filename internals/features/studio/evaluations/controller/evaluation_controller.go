// file: internals/features/studio/evaluations/controller/evaluation_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/evaluations/dto"
	"dancestudio_backend/internals/features/studio/evaluations/model"
	"dancestudio_backend/internals/features/studio/evaluations/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type EvaluationController struct {
	DB      *gorm.DB
	Service *service.EvaluationService
}

func NewEvaluationController(db *gorm.DB) *EvaluationController {
	return &EvaluationController{DB: db, Service: service.NewEvaluationService(db)}
}

func settingsResponse(m model.EvaluationSettingsModel) dto.SettingsResponse {
	labels := m.CriteriaLabels()
	if labels == nil {
		labels = []string{}
	}
	return dto.SettingsResponse{
		StudioID:           m.StudioID.String(),
		Enabled:            m.Enabled,
		VisibleToStudents:  m.VisibleToStudents,
		EditableByTeachers: m.EditableByTeachers,
		Criteria:           labels,
	}
}

// GET /api/studio/:studioId/evaluation-settings
func (ctl *EvaluationController) GetSettings(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	row, err := ctl.Service.GetSettings(c.UserContext(), caller, studioID)
	if err != nil {
		return helper.FromServiceError(c, "Evaluation", err)
	}
	return helper.JsonKeyed(c, fiber.StatusOK, "ok", "settings", settingsResponse(row))
}

// PUT /api/studio/:studioId/evaluation-settings
func (ctl *EvaluationController) PutSettings(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	var req dto.UpdateSettingsRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	row, err := ctl.Service.UpdateSettings(c.UserContext(), caller, studioID, service.SettingsInput{
		Enabled:            req.Enabled,
		VisibleToStudents:  req.VisibleToStudents,
		EditableByTeachers: req.EditableByTeachers,
		Criteria:           req.Criteria,
	})
	if err != nil {
		return helper.FromServiceError(c, "Evaluation", err)
	}
	return helper.JsonKeyed(c, fiber.StatusOK, "Settings saved", "settings", settingsResponse(row))
}

// GET /api/studio/:studioId/evaluations?program_id=&enrollment_id=&period=
func (ctl *EvaluationController) List(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}
	programID, err := helperAuth.ParseUUIDQuery(c, "program_id")
	if err != nil {
		return err
	}
	enrollmentID, err := helperAuth.ParseUUIDQuery(c, "enrollment_id")
	if err != nil {
		return err
	}

	rows, err := ctl.Service.List(c.UserContext(), caller, studioID, service.ListFilter{
		ProgramID:    programID,
		EnrollmentID: enrollmentID,
		Period:       c.Query("period"),
	})
	if err != nil {
		return helper.FromServiceError(c, "Evaluation", err)
	}
	return helper.JsonList(c, "ok", rows, int64(len(rows)))
}

// PUT /api/studio/:studioId/evaluations
func (ctl *EvaluationController) Upsert(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	var req dto.UpsertEvaluationRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	enrollmentID, err := uuid.Parse(req.EnrollmentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid enrollment_id")
	}

	row, err := ctl.Service.Upsert(c.UserContext(), caller, studioID, service.UpsertInput{
		EnrollmentID: enrollmentID,
		Period:       req.Period,
		Scores:       req.Scores,
		Comment:      req.Comment,
		IsPublished:  req.IsPublished,
	})
	if err != nil {
		return helper.FromServiceError(c, "Evaluation", err)
	}
	return helper.JsonKeyed(c, fiber.StatusOK, "Evaluation saved", "evaluation", row)
}
