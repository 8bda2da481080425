// file: internals/features/studio/enrollments/controller/enrollment_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/enrollments/dto"
	"dancestudio_backend/internals/features/studio/enrollments/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

type EnrollmentController struct {
	DB        *gorm.DB
	Admission *service.AdmissionService
	Waitlist  *service.WaitlistService
}

func NewEnrollmentController(db *gorm.DB, notifier notifications.Notifier) *EnrollmentController {
	return &EnrollmentController{
		DB:        db,
		Admission: service.NewAdmissionService(db, notifier),
		Waitlist:  service.NewWaitlistService(db, notifier),
	}
}

// POST /api/enroll
func (ctl *EnrollmentController) Enroll(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}

	var req dto.EnrollRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	in := service.EnrollInput{
		ProgramID: uuid.MustParse(req.ProgramID),
		FormData:  req.FormData,
		Waitlist:  req.Waitlist,
	}
	if req.SubProfileID != nil {
		sp := uuid.MustParse(*req.SubProfileID)
		in.SubProfileID = &sp
	}

	res, err := ctl.Admission.Enroll(c.UserContext(), caller, in)
	if err != nil {
		var mf *service.MissingFieldsError
		if errors.As(err, &mf) {
			return helper.JsonMissingFields(c, service.MsgMissingProfile, mf.Fields)
		}
		return helper.FromServiceError(c, "Enroll", err)
	}
	return helper.JsonKeyed(c, fiber.StatusCreated, res.Outcome.Message(), "inschrijving", dto.FromModel(res.Enrollment))
}

// GET /api/studio/:studioId/waitlist?program_id=
func (ctl *EnrollmentController) ListWaitlist(c *fiber.Ctx) error {
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

	rows, err := ctl.Waitlist.List(c.UserContext(), caller, studioID, programID)
	if err != nil {
		return helper.FromServiceError(c, "Waitlist", err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), int64(len(rows)))
}

// PATCH /api/studio/:studioId/waitlist/:enrollmentId/accept
func (ctl *EnrollmentController) AcceptWaitlist(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}
	enrollmentID, err := helperAuth.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return err
	}

	row, err := ctl.Waitlist.Accept(c.UserContext(), caller, studioID, enrollmentID)
	if err != nil {
		return helper.FromServiceError(c, "Waitlist", err)
	}
	return helper.JsonKeyed(c, fiber.StatusOK, "Waitlist entry accepted", "inschrijving", dto.FromModel(row))
}
