// file: internals/features/studio/absences/service/absence_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"dancestudio_backend/internals/features/studio/absences/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

type AbsenceService struct {
	DB *gorm.DB
}

func NewAbsenceService(db *gorm.DB) *AbsenceService {
	return &AbsenceService{DB: db}
}

type CreateInput struct {
	LessonID     uuid.UUID
	EnrollmentID *uuid.UUID
	Reason       *string
}

// Create records a self-reported absence. Reporting twice for the same
// (lesson, user, enrollment) returns the existing report with created=false.
func (s *AbsenceService) Create(ctx context.Context, caller helperAuth.Caller, in CreateInput) (*model.LessonAbsenceModel, bool, error) {
	db := s.DB.WithContext(ctx)

	lesson, err := s.loadLesson(ctx, in.LessonID)
	if err != nil {
		return nil, false, err
	}

	if in.EnrollmentID != nil {
		var e enrollModel.EnrollmentModel
		err := db.Where("id = ?", *in.EnrollmentID).Take(&e).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fiber.NewError(fiber.StatusNotFound, "Enrollment not found")
		}
		if err != nil {
			return nil, false, pkgerrors.Wrap(err, "load enrollment")
		}
		if e.UserID != caller.UserID || e.ProgramID != lesson.ProgramID {
			return nil, false, fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	} else {
		var n int64
		if err := db.Model(&enrollModel.EnrollmentModel{}).
			Where("program_id = ? AND user_id = ? AND status <> ?", lesson.ProgramID, caller.UserID, enrollModel.EnrollmentCancelled).
			Count(&n).Error; err != nil {
			return nil, false, pkgerrors.Wrap(err, "check enrollment")
		}
		if n == 0 {
			return nil, false, fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	}

	var existing model.LessonAbsenceModel
	q := db.Where("lesson_id = ? AND user_id = ?", lesson.ID, caller.UserID)
	if in.EnrollmentID != nil {
		q = q.Where("enrollment_id = ?", *in.EnrollmentID)
	} else {
		q = q.Where("enrollment_id IS NULL")
	}
	err = q.Take(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(err, "load absence")
	}

	row := &model.LessonAbsenceModel{
		LessonID:     lesson.ID,
		UserID:       caller.UserID,
		EnrollmentID: in.EnrollmentID,
		Reason:       trimmed(in.Reason),
	}
	if err := db.Create(row).Error; err != nil {
		return nil, false, pkgerrors.Wrap(err, "insert absence")
	}
	log.Printf("[Absence] reported lesson=%s user=%s", lesson.ID, caller.UserID)
	return row, true, nil
}

// Delete removes a report; only its reporter may do so.
func (s *AbsenceService) Delete(ctx context.Context, caller helperAuth.Caller, id uuid.UUID) error {
	var row model.LessonAbsenceModel
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Absence not found")
	}
	if err != nil {
		return pkgerrors.Wrap(err, "load absence")
	}
	if row.UserID != caller.UserID {
		return fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}
	if err := s.DB.WithContext(ctx).Delete(&row).Error; err != nil {
		return pkgerrors.Wrap(err, "delete absence")
	}
	return nil
}

// ListOwn returns the caller's reports, optionally for one program.
func (s *AbsenceService) ListOwn(ctx context.Context, caller helperAuth.Caller, programID *uuid.UUID) ([]model.LessonAbsenceModel, error) {
	q := s.DB.WithContext(ctx).Where("user_id = ?", caller.UserID)
	if programID != nil {
		sub := s.DB.WithContext(ctx).Model(&programModel.LessonModel{}).Select("id").Where("program_id = ?", *programID)
		q = q.Where("lesson_id IN (?)", sub)
	}
	var rows []model.LessonAbsenceModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list absences")
	}
	return rows, nil
}

// ListForLesson is the staff view of one lesson's reports.
func (s *AbsenceService) ListForLesson(ctx context.Context, caller helperAuth.Caller, lessonID uuid.UUID) ([]model.LessonAbsenceModel, error) {
	lesson, err := s.loadLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	var program programModel.ProgramModel
	if err := s.DB.WithContext(ctx).Where("id = ?", lesson.ProgramID).Take(&program).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load program")
	}
	ok, err := helperAuth.IsProgramStaff(ctx, s.DB, &program, lesson.TeacherID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}

	var rows []model.LessonAbsenceModel
	if err := s.DB.WithContext(ctx).
		Where("lesson_id = ?", lesson.ID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list absences")
	}
	return rows, nil
}

func (s *AbsenceService) loadLesson(ctx context.Context, id uuid.UUID) (*programModel.LessonModel, error) {
	var lesson programModel.LessonModel
	err := s.DB.WithContext(ctx).Where("id = ?", id).Take(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Lesson not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load lesson")
	}
	return &lesson, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
