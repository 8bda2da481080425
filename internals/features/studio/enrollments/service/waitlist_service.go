// file: internals/features/studio/enrollments/service/waitlist_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/enrollments/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

type WaitlistService struct {
	DB       *gorm.DB
	Notifier notifications.Notifier
}

func NewWaitlistService(db *gorm.DB, notifier notifications.Notifier) *WaitlistService {
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	return &WaitlistService{DB: db, Notifier: notifier}
}

// List returns waitlisted and accepted rows of the studio, oldest first.
func (s *WaitlistService) List(ctx context.Context, caller helperAuth.Caller, studioID uuid.UUID, programID *uuid.UUID) ([]model.EnrollmentModel, error) {
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).
		Where("studio_id = ? AND status IN ?", studioID, []model.EnrollmentStatus{model.EnrollmentWaitlisted, model.EnrollmentWaitlistAccepted})
	if programID != nil {
		q = q.Where("program_id = ?", *programID)
	}
	var rows []model.EnrollmentModel
	if err := q.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list waitlist")
	}
	return rows, nil
}

// Accept flips waitlisted to waitlist_accepted. The holder's next enroll
// call then activates the same row.
func (s *WaitlistService) Accept(ctx context.Context, caller helperAuth.Caller, studioID, enrollmentID uuid.UUID) (*model.EnrollmentModel, error) {
	if err := helperAuth.RequireStudioAdmin(ctx, s.DB, studioID, caller); err != nil {
		return nil, err
	}

	var row model.EnrollmentModel
	err := s.DB.WithContext(ctx).
		Where("id = ? AND studio_id = ?", enrollmentID, studioID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Enrollment not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load enrollment")
	}

	switch row.Status {
	case model.EnrollmentWaitlistAccepted:
		return &row, nil
	case model.EnrollmentWaitlisted:
	case model.EnrollmentActive, model.EnrollmentCancelled:
		return nil, fiber.NewError(fiber.StatusConflict, "Enrollment is not on the waitlist")
	default:
		return nil, fiber.NewError(fiber.StatusConflict, "Enrollment is not on the waitlist")
	}

	if err := s.DB.WithContext(ctx).
		Model(&row).
		Update("status", model.EnrollmentWaitlistAccepted).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "accept waitlist enrollment")
	}
	row.Status = model.EnrollmentWaitlistAccepted
	log.Printf("[Waitlist] accepted enrollment=%s by=%s", row.ID, caller.UserID)

	s.Notifier.Notify(ctx, []uuid.UUID{row.UserID},
		notifications.KindWaitlistAccepted,
		"A place is available",
		"You have been accepted from the waitlist. Confirm your enrollment to take the place.",
		fmt.Sprintf("/programs/%s/enroll", row.ProgramID),
	)
	return &row, nil
}
