package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dancestudio_backend/internals/databases/testdb"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

func requireFiberError(t *testing.T, err error, code int) {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected *fiber.Error, got %v", err)
	assert.Equal(t, code, fe.Code)
}

func TestAbsence_CreateIsIdempotent(t *testing.T) {
	db := testdb.Open(t)
	studio := testdb.Studio(t, db)
	program := testdb.Program(t, db, studio.ID, testdb.ProgramOpts{})
	lesson := testdb.Lesson(t, db, program.ID, testdb.Date(2026, time.May, 4), nil)
	student := uuid.New()
	testdb.Enrollment(t, db, program, student, nil, enrollModel.EnrollmentActive)

	svc := NewAbsenceService(db)
	caller := helperAuth.Caller{UserID: student}
	reason := "  dentist  "

	first, created, err := svc.Create(context.Background(), caller, CreateInput{LessonID: lesson.ID, Reason: &reason})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "dentist", *first.Reason)

	second, created, err := svc.Create(context.Background(), caller, CreateInput{LessonID: lesson.ID})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	own, err := svc.ListOwn(context.Background(), caller, &program.ID)
	require.NoError(t, err)
	assert.Len(t, own, 1)
}

func TestAbsence_RequiresEnrollment(t *testing.T) {
	db := testdb.Open(t)
	studio := testdb.Studio(t, db)
	program := testdb.Program(t, db, studio.ID, testdb.ProgramOpts{})
	lesson := testdb.Lesson(t, db, program.ID, testdb.Date(2026, time.May, 4), nil)
	svc := NewAbsenceService(db)

	_, _, err := svc.Create(context.Background(), helperAuth.Caller{UserID: uuid.New()}, CreateInput{LessonID: lesson.ID})
	requireFiberError(t, err, fiber.StatusForbidden)

	owner := uuid.New()
	e := testdb.Enrollment(t, db, program, owner, nil, enrollModel.EnrollmentActive)
	_, _, err = svc.Create(context.Background(), helperAuth.Caller{UserID: uuid.New()}, CreateInput{LessonID: lesson.ID, EnrollmentID: &e.ID})
	requireFiberError(t, err, fiber.StatusForbidden)

	cancelled := uuid.New()
	testdb.Enrollment(t, db, program, cancelled, nil, enrollModel.EnrollmentCancelled)
	_, _, err = svc.Create(context.Background(), helperAuth.Caller{UserID: cancelled}, CreateInput{LessonID: lesson.ID})
	requireFiberError(t, err, fiber.StatusForbidden)
}

func TestAbsence_DeleteReporterOnly(t *testing.T) {
	db := testdb.Open(t)
	studio := testdb.Studio(t, db)
	program := testdb.Program(t, db, studio.ID, testdb.ProgramOpts{})
	lesson := testdb.Lesson(t, db, program.ID, testdb.Date(2026, time.May, 4), nil)
	student := uuid.New()
	testdb.Enrollment(t, db, program, student, nil, enrollModel.EnrollmentActive)
	svc := NewAbsenceService(db)

	row, _, err := svc.Create(context.Background(), helperAuth.Caller{UserID: student}, CreateInput{LessonID: lesson.ID})
	require.NoError(t, err)

	requireFiberError(t, svc.Delete(context.Background(), helperAuth.Caller{UserID: uuid.New()}, row.ID), fiber.StatusForbidden)
	require.NoError(t, svc.Delete(context.Background(), helperAuth.Caller{UserID: student}, row.ID))
	requireFiberError(t, svc.Delete(context.Background(), helperAuth.Caller{UserID: student}, row.ID), fiber.StatusNotFound)
}

func TestAbsence_StaffListForLesson(t *testing.T) {
	db := testdb.Open(t)
	studio := testdb.Studio(t, db)
	teacher := testdb.Member(t, db, studio.ID, studioModel.RoleTeacher)
	program := testdb.Program(t, db, studio.ID, testdb.ProgramOpts{})
	testdb.AssignTeacher(t, db, program.ID, teacher)
	lesson := testdb.Lesson(t, db, program.ID, testdb.Date(2026, time.May, 4), nil)
	student := uuid.New()
	testdb.Enrollment(t, db, program, student, nil, enrollModel.EnrollmentActive)
	svc := NewAbsenceService(db)

	_, _, err := svc.Create(context.Background(), helperAuth.Caller{UserID: student}, CreateInput{LessonID: lesson.ID})
	require.NoError(t, err)

	rows, err := svc.ListForLesson(context.Background(), helperAuth.Caller{UserID: teacher}, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.ListForLesson(context.Background(), helperAuth.Caller{UserID: student}, lesson.ID)
	requireFiberError(t, err, fiber.StatusForbidden)
}
