// file: internals/features/studio/timesheets/controller/timesheet_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/timesheets/dto"
	"dancestudio_backend/internals/features/studio/timesheets/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/helpers/dbtime"
)

type TimesheetController struct {
	DB      *gorm.DB
	Service *service.TimesheetService
}

func NewTimesheetController(db *gorm.DB, compat *database.SchemaCompat) *TimesheetController {
	return &TimesheetController{DB: db, Service: service.NewTimesheetService(db, compat)}
}

func parseOptionalUUID(raw *string) *uuid.UUID {
	if raw == nil || *raw == "" {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}

// GET /api/studio/:studioId/timesheets?year=&month=&page=&per_page=
func (ctl *TimesheetController) List(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	page := helper.ParseFiber(c, helper.DefaultOpts)
	rows, total, err := ctl.Service.List(c.UserContext(), caller, studioID, service.ListFilter{
		Year:   c.QueryInt("year"),
		Month:  c.QueryInt("month"),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonPaged(c, "ok", rows, helper.BuildMeta(total, page))
}

// POST /api/studio/:studioId/timesheets
func (ctl *TimesheetController) Create(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	var req dto.CreateTimesheetRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	row, err := ctl.Service.Create(c.UserContext(), caller, studioID, service.CreateInput{
		TeacherID:    parseOptionalUUID(req.TeacherID),
		Month:        req.Month,
		Year:         req.Year,
		SchoolYearID: parseOptionalUUID(req.SchoolYearID),
		Notes:        req.Notes,
	})
	if err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonCreated(c, "Timesheet created", row)
}

// GET /api/studio/:studioId/timesheets/:timesheetId
func (ctl *TimesheetController) Get(c *fiber.Ctx) error {
	caller, studioID, timesheetID, err := timesheetParams(c)
	if err != nil {
		return err
	}
	row, err := ctl.Service.Get(c.UserContext(), caller, studioID, timesheetID)
	if err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonOK(c, "ok", row)
}

// PATCH /api/studio/:studioId/timesheets/:timesheetId  {"status":"confirmed"}
func (ctl *TimesheetController) UpdateStatus(c *fiber.Ctx) error {
	caller, studioID, timesheetID, err := timesheetParams(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}

	row, err := ctl.Service.UpdateStatus(c.UserContext(), caller, studioID, timesheetID, req.Status)
	if err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonUpdated(c, "Timesheet updated", row)
}

// DELETE /api/studio/:studioId/timesheets/:timesheetId
func (ctl *TimesheetController) Delete(c *fiber.Ctx) error {
	caller, studioID, timesheetID, err := timesheetParams(c)
	if err != nil {
		return err
	}
	if err := ctl.Service.Delete(c.UserContext(), caller, studioID, timesheetID); err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonDeleted(c, "Timesheet deleted", fiber.Map{"id": timesheetID})
}

// POST /api/studio/:studioId/timesheets/:timesheetId/entries
func (ctl *TimesheetController) AddEntry(c *fiber.Ctx) error {
	caller, studioID, timesheetID, err := timesheetParams(c)
	if err != nil {
		return err
	}
	var req dto.AddEntryRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	date, err := dbtime.ParseDate(req.Date)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid date")
	}

	entry, err := ctl.Service.AddEntry(c.UserContext(), caller, studioID, timesheetID, service.EntryInput{
		LessonID:        parseOptionalUUID(req.LessonID),
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		LessonFee:       req.LessonFee,
		TransportFee:    req.TransportFee,
		Description:     req.Description,
	})
	if err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonCreated(c, "Entry added", entry)
}

// DELETE /api/studio/:studioId/timesheets/:timesheetId/entries/:entryId
func (ctl *TimesheetController) DeleteEntry(c *fiber.Ctx) error {
	caller, studioID, timesheetID, err := timesheetParams(c)
	if err != nil {
		return err
	}
	entryID, err := helperAuth.ParseUUIDParam(c, "entryId")
	if err != nil {
		return err
	}
	if err := ctl.Service.DeleteEntry(c.UserContext(), caller, studioID, timesheetID, entryID); err != nil {
		return helper.FromServiceError(c, "Timesheet", err)
	}
	return helper.JsonDeleted(c, "Entry deleted", fiber.Map{"id": entryID})
}

func timesheetParams(c *fiber.Ctx) (helperAuth.Caller, uuid.UUID, uuid.UUID, error) {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return helperAuth.Caller{}, uuid.Nil, uuid.Nil, err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return caller, uuid.Nil, uuid.Nil, err
	}
	timesheetID, err := helperAuth.ParseUUIDParam(c, "timesheetId")
	if err != nil {
		return caller, uuid.Nil, uuid.Nil, err
	}
	return caller, studioID, timesheetID, nil
}
