// file: internals/features/studio/compensations/controller/compensation_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/compensations/dto"
	"dancestudio_backend/internals/features/studio/compensations/model"
	"dancestudio_backend/internals/features/studio/compensations/service"
	helper "dancestudio_backend/internals/helpers"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type CompensationController struct {
	DB      *gorm.DB
	Service *service.CompensationService
}

func NewCompensationController(db *gorm.DB) *CompensationController {
	return &CompensationController{DB: db, Service: service.NewCompensationService(db)}
}

// GET /api/studio/:studioId/teacher-compensation/:teacherId
func (ctl *CompensationController) Get(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}
	teacherID, err := helperAuth.ParseUUIDParam(c, "teacherId")
	if err != nil {
		return err
	}

	row, err := ctl.Service.Get(c.UserContext(), caller, studioID, teacherID)
	if err != nil {
		return helper.FromServiceError(c, "Compensation", err)
	}
	return helper.JsonOK(c, "ok", row)
}

// PUT /api/studio/:studioId/teacher-compensation/:teacherId
func (ctl *CompensationController) Put(c *fiber.Ctx) error {
	caller, err := helperAuth.CallerFromCtx(c)
	if err != nil {
		return err
	}
	studioID, err := helperAuth.ParseUUIDParam(c, "studioId")
	if err != nil {
		return err
	}
	teacherID, err := helperAuth.ParseUUIDParam(c, "teacherId")
	if err != nil {
		return err
	}

	var req dto.UpsertCompensationRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	method, _ := model.ParsePaymentMethod(req.PaymentMethod)

	row, err := ctl.Service.Upsert(c.UserContext(), caller, studioID, teacherID, service.UpsertInput{
		PaymentMethod: method,
		HourlyRate:    req.HourlyRate,
		TransportFee:  req.TransportFee,
		Active:        req.Active,
	})
	if err != nil {
		return helper.FromServiceError(c, "Compensation", err)
	}
	return helper.JsonUpdated(c, "Compensation saved", row)
}
