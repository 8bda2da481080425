// file: internals/features/studio/payrolls/controller/payroll_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/features/studio/payrolls/dto"
	"dancestudio_backend/internals/features/studio/payrolls/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

type PayrollController struct {
	DB      *gorm.DB
	Service *service.PayrollService
}

func NewPayrollController(db *gorm.DB, compat *database.SchemaCompat, notifier notifications.Notifier) *PayrollController {
	return &PayrollController{DB: db, Service: service.NewPayrollService(db, compat, notifier)}
}

// GET /api/studio/:studioId/payrolls?year=&month=&page=&per_page=
func (ctl *PayrollController) List(c *fiber.Ctx) error {
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
		return helper.FromServiceError(c, "Payroll", err)
	}
	return helper.JsonPaged(c, "ok", rows, helper.BuildMeta(total, page))
}

// POST /api/studio/:studioId/payrolls  {"timesheet_id": "..."}
// 201 on creation, 200 when the timesheet already had a payroll.
func (ctl *PayrollController) Create(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}

	var req dto.CreatePayrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}
	raw := strings.TrimSpace(req.TimesheetID)
	if raw == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, service.MsgMissingTimesheetID)
	}
	timesheetID, err := uuid.Parse(raw)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid timesheet_id")
	}

	row, created, err := ctl.Service.Create(c.UserContext(), caller, studioID, timesheetID)
	if err != nil {
		return helper.FromServiceError(c, "Payroll", err)
	}
	if !created {
		return helper.JsonKeyed(c, fiber.StatusOK, "Payroll already exists", "payroll", row)
	}
	return helper.JsonKeyed(c, fiber.StatusCreated, "Payroll created", "payroll", row)
}

// PATCH /api/studio/:studioId/payrolls/:payrollId  {"status":"paid"}
func (ctl *PayrollController) UpdateStatus(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}
	payrollID, err := helperAuth.ParseUUIDParam(c, "payrollId")
	if err != nil {
		return err
	}

	var req dto.UpdatePayrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid payload")
	}

	row, err := ctl.Service.UpdateStatus(c.UserContext(), caller, studioID, payrollID, req.Status)
	if err != nil {
		return helper.FromServiceError(c, "Payroll", err)
	}
	return helper.JsonKeyed(c, fiber.StatusOK, "Payroll updated", "payroll", row)
}
