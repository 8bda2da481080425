// file: internals/features/studio/compensations/service/compensation_service.go
package service

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dancestudio_backend/internals/features/studio/compensations/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type CompensationService struct {
	DB *gorm.DB
}

func NewCompensationService(db *gorm.DB) *CompensationService {
	return &CompensationService{DB: db}
}

// ActiveFor returns the active compensation row, nil when there is none.
func ActiveFor(ctx context.Context, db *gorm.DB, studioID, teacherID uuid.UUID) (*model.TeacherCompensationModel, error) {
	var row model.TeacherCompensationModel
	err := db.WithContext(ctx).
		Where("studio_id = ? AND teacher_id = ? AND active = ?", studioID, teacherID, true).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load compensation")
	}
	return &row, nil
}

// Get: admins for anyone, teachers for themselves.
func (s *CompensationService) Get(ctx context.Context, caller helperAuth.Caller, studioID, teacherID uuid.UUID) (*model.TeacherCompensationModel, error) {
	role, err := helperAuth.RequireStudioStaff(ctx, s.DB, studioID, caller)
	if err != nil {
		return nil, err
	}
	if !role.IsAdmin() && caller.UserID != teacherID {
		return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}

	var row model.TeacherCompensationModel
	err = s.DB.WithContext(ctx).
		Where("studio_id = ? AND teacher_id = ?", studioID, teacherID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Compensation not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load compensation")
	}
	return &row, nil
}

type UpsertInput struct {
	PaymentMethod model.PaymentMethod
	HourlyRate    *float64
	TransportFee  *float64
	Active        *bool
}

// Upsert sets the compensation of one teacher (admins only).
func (s *CompensationService) Upsert(ctx context.Context, caller helperAuth.Caller, studioID, teacherID uuid.UUID, in UpsertInput) (*model.TeacherCompensationModel, error) {
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid payment_method")
	}

	row := model.TeacherCompensationModel{
		StudioID:      studioID,
		TeacherID:     teacherID,
		PaymentMethod: in.PaymentMethod,
		Active:        true,
	}
	if in.HourlyRate != nil {
		row.HourlyRate = *in.HourlyRate
	}
	if in.TransportFee != nil {
		row.TransportFee = *in.TransportFee
	}
	if in.Active != nil {
		row.Active = *in.Active
	}

	update := []string{"payment_method", "active", "updated_at"}
	if in.HourlyRate != nil {
		update = append(update, "hourly_rate")
	}
	if in.TransportFee != nil {
		update = append(update, "transport_fee")
	}

	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "studio_id"}, {Name: "teacher_id"}},
			DoUpdates: clause.AssignmentColumns(update),
		}).
		Create(&row).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "upsert compensation")
	}
	log.Printf("[Compensation] studio=%s teacher=%s method=%s", studioID, teacherID, in.PaymentMethod)

	var saved model.TeacherCompensationModel
	if err := s.DB.WithContext(ctx).
		Where("studio_id = ? AND teacher_id = ?", studioID, teacherID).
		Take(&saved).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "reload compensation")
	}
	return &saved, nil
}
