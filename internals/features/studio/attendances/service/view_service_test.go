package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dancestudio_backend/internals/databases/testdb"
	absenceModel "dancestudio_backend/internals/features/studio/absences/model"
	"dancestudio_backend/internals/features/studio/attendances/dto"
	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

func TestLessonView_MergesRowsAndAbsences(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	e := testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)
	testdb.Enrollment(t, f.db, f.program, uuid.New(), nil, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(lesson.ID, student, "absent", &e.ID)})
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&absenceModel.LessonAbsenceModel{LessonID: lesson.ID, UserID: student, Reason: strPtr("ill")}).Error)

	view, err := f.svc.LessonView(context.Background(), f.teacher, lesson.ID)
	require.NoError(t, err)
	require.Len(t, view.Enrollments, 2)

	var line *dto.LessonEnrollmentAttendance
	for i := range view.Enrollments {
		if view.Enrollments[i].EnrollmentID == e.ID {
			line = &view.Enrollments[i]
		}
	}
	require.NotNil(t, line)
	require.NotNil(t, line.Status)
	assert.Equal(t, model.AttendanceAbsent, *line.Status)
	require.Len(t, line.Absences, 1)
	assert.Equal(t, "ill", *line.Absences[0].Reason)
}

func TestLessonView_Forbidden(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 1)

	_, err := f.svc.LessonView(context.Background(), helperAuth.Caller{UserID: uuid.New()}, lesson.ID)
	requireFiberError(t, err, fiber.StatusForbidden, "")

	_, err = f.svc.LessonView(context.Background(), f.admin, uuid.New())
	requireFiberError(t, err, fiber.StatusNotFound, "")
}

func TestEnrollmentView_HolderSeesLegacyRows(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	older := f.lessonDaysAgo(t, 5)
	newer := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	e := testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(newer.ID, student, "present", &e.ID)})
	require.NoError(t, err)
	// unkeyed legacy row for the same user
	require.NoError(t, f.db.Create(&model.LessonAttendanceModel{LessonID: older.ID, UserID: student, Status: model.AttendanceLate}).Error)

	rows, err := f.svc.EnrollmentView(context.Background(), helperAuth.Caller{UserID: student}, e.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].LessonDate)
	assert.Equal(t, newer.Date.Format("2006-01-02"), *rows[0].LessonDate)
	assert.Equal(t, model.AttendanceLate, rows[1].Status)

	_, err = f.svc.EnrollmentView(context.Background(), helperAuth.Caller{UserID: uuid.New()}, e.ID)
	requireFiberError(t, err, fiber.StatusForbidden, "")
}
