// file: internals/features/studio/attendances/service/view_service.go
package service

import (
	"context"
	"errors"
	"sort"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	absenceModel "dancestudio_backend/internals/features/studio/absences/model"
	"dancestudio_backend/internals/features/studio/attendances/dto"
	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

func (s *ReconcilerService) canViewProgram(ctx context.Context, caller helperAuth.Caller, program *programModel.ProgramModel, lesson *programModel.LessonModel) (bool, error) {
	var lessonTeacher *uuid.UUID
	if lesson != nil {
		lessonTeacher = lesson.TeacherID
	}
	return helperAuth.IsProgramStaff(ctx, s.DB, program, lessonTeacher, caller.UserID)
}

// LessonView is the staff view of one lesson: every enrolled holder with the
// merged attendance rows and any self-reported absences.
func (s *ReconcilerService) LessonView(ctx context.Context, caller helperAuth.Caller, lessonID uuid.UUID) (*dto.LessonAttendanceView, error) {
	db := s.DB.WithContext(ctx)

	var lesson programModel.LessonModel
	if err := db.Where("id = ?", lessonID).Take(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Lesson not found")
		}
		return nil, pkgerrors.Wrap(err, "load lesson")
	}
	var program programModel.ProgramModel
	if err := db.Where("id = ?", lesson.ProgramID).Take(&program).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load program")
	}

	ok, err := s.canViewProgram(ctx, caller, &program, &lesson)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
	}

	var enrollments []enrollModel.EnrollmentModel
	if err := db.Where("program_id = ? AND status = ?", program.ID, enrollModel.EnrollmentActive).
		Order("created_at ASC").
		Find(&enrollments).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load enrollments")
	}

	var rows []model.LessonAttendanceModel
	if err := db.Where("lesson_id = ?", lesson.ID).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load attendance")
	}

	var absences []absenceModel.LessonAbsenceModel
	if err := db.Where("lesson_id = ?", lesson.ID).Order("created_at ASC").Find(&absences).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load absences")
	}

	view := &dto.LessonAttendanceView{
		LessonID:    lesson.ID,
		LessonDate:  lesson.Date.Format("2006-01-02"),
		ProgramID:   program.ID,
		Enrollments: make([]dto.LessonEnrollmentAttendance, 0, len(enrollments)),
	}
	for i := range enrollments {
		e := &enrollments[i]
		merged := MergeForEnrollment(e, rows)

		line := dto.LessonEnrollmentAttendance{
			EnrollmentID: e.ID,
			UserID:       e.UserID,
			SubProfileID: e.SubProfileID,
			Enrollment:   e.Status,
			Records:      make([]dto.AttendanceResponse, 0, len(merged)),
			Absences:     make([]dto.AbsenceBrief, 0),
		}
		for j := range merged {
			line.Records = append(line.Records, dto.FromModel(&merged[j]))
		}
		if len(merged) > 0 {
			st := merged[0].Status
			line.Status = &st
		}
		for _, a := range absences {
			if absenceBelongsTo(&a, e) {
				line.Absences = append(line.Absences, dto.AbsenceBrief{ID: a.ID, Reason: a.Reason, CreatedAt: a.CreatedAt})
			}
		}
		view.Enrollments = append(view.Enrollments, line)
	}
	return view, nil
}

// absenceBelongsTo follows the attendance rule: keyed reports match their
// enrollment, unkeyed reports only the user's main enrollment.
func absenceBelongsTo(a *absenceModel.LessonAbsenceModel, e *enrollModel.EnrollmentModel) bool {
	if a.EnrollmentID != nil {
		return *a.EnrollmentID == e.ID
	}
	return e.IsMainProfile() && a.UserID == e.UserID
}

// EnrollmentView lists the attendance history of one enrollment, newest lesson
// first. Visible to the enrollment holder and to program staff.
func (s *ReconcilerService) EnrollmentView(ctx context.Context, caller helperAuth.Caller, enrollmentID uuid.UUID) ([]dto.AttendanceResponse, error) {
	db := s.DB.WithContext(ctx)

	var e enrollModel.EnrollmentModel
	if err := db.Where("id = ?", enrollmentID).Take(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Enrollment not found")
		}
		return nil, pkgerrors.Wrap(err, "load enrollment")
	}

	if e.UserID != caller.UserID {
		var program programModel.ProgramModel
		if err := db.Where("id = ?", e.ProgramID).Take(&program).Error; err != nil {
			return nil, pkgerrors.Wrap(err, "load program")
		}
		ok, err := s.canViewProgram(ctx, caller, &program, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fiber.NewError(fiber.StatusForbidden, "Forbidden")
		}
	}

	var lessons []programModel.LessonModel
	if err := db.Where("program_id = ?", e.ProgramID).Find(&lessons).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load lessons")
	}
	lessonDates := make(map[uuid.UUID]string, len(lessons))
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		lessonDates[l.ID] = l.Date.Format("2006-01-02")
		lessonIDs = append(lessonIDs, l.ID)
	}
	if len(lessonIDs) == 0 {
		return []dto.AttendanceResponse{}, nil
	}

	q := db.Where("lesson_id IN ?", lessonIDs)
	if e.IsMainProfile() {
		q = q.Where("(enrollment_id = ? OR (enrollment_id IS NULL AND user_id = ?))", e.ID, e.UserID)
	} else {
		q = q.Where("enrollment_id = ?", e.ID)
	}
	var rows []model.LessonAttendanceModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "load attendance")
	}

	// keyed rows first within each lesson
	byLesson := map[uuid.UUID][]model.LessonAttendanceModel{}
	for _, r := range rows {
		byLesson[r.LessonID] = append(byLesson[r.LessonID], r)
	}
	out := make([]dto.AttendanceResponse, 0, len(rows))
	for lessonID, list := range byLesson {
		d := lessonDates[lessonID]
		for _, r := range MergeForEnrollment(&e, list) {
			resp := dto.FromModel(&r)
			resp.LessonDate = &d
			out = append(out, resp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].LessonDate > *out[j].LessonDate })
	return out, nil
}
