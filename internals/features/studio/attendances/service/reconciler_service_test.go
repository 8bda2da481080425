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
	"gorm.io/gorm"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/databases/testdb"
	"dancestudio_backend/internals/features/studio/attendances/dto"
	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
)

var fixedNow = time.Date(2026, time.March, 21, 12, 0, 0, 0, time.UTC)

type reconcilerFixture struct {
	db      *gorm.DB
	svc     *ReconcilerService
	studio  uuid.UUID
	admin   helperAuth.Caller
	teacher helperAuth.Caller
	program programModel.ProgramModel
}

func newReconcilerFixture(t *testing.T, db *gorm.DB) *reconcilerFixture {
	studio := testdb.Studio(t, db)
	admin := testdb.Member(t, db, studio.ID, studioModel.RoleAdmin)
	teacher := testdb.Member(t, db, studio.ID, studioModel.RoleTeacher)
	program := testdb.Program(t, db, studio.ID, testdb.ProgramOpts{})
	testdb.AssignTeacher(t, db, program.ID, teacher)

	svc := NewReconcilerService(db, database.NewSchemaCompat())
	svc.Clock = func() time.Time { return fixedNow }
	svc.WindowDays = 14

	return &reconcilerFixture{
		db:      db,
		svc:     svc,
		studio:  studio.ID,
		admin:   helperAuth.Caller{UserID: admin},
		teacher: helperAuth.Caller{UserID: teacher},
		program: program,
	}
}

func (f *reconcilerFixture) lessonDaysAgo(t *testing.T, days int) programModel.LessonModel {
	d := fixedNow.AddDate(0, 0, -days)
	return testdb.Lesson(t, f.db, f.program.ID, testdb.Date(d.Year(), d.Month(), d.Day()), nil)
}

func row(lessonID, userID uuid.UUID, status string, enrollmentID *uuid.UUID) dto.AttendanceRowRequest {
	r := dto.AttendanceRowRequest{LessonID: lessonID.String(), UserID: userID.String(), Status: status}
	if enrollmentID != nil {
		s := enrollmentID.String()
		r.EnrollmentID = &s
	}
	return r
}

func strPtr(s string) *string { return &s }

func requireFiberError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected *fiber.Error, got %v", err)
	assert.Equal(t, code, fe.Code)
	if msg != "" {
		assert.Equal(t, msg, fe.Message)
	}
}

func countAttendance(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Table("lesson_attendances").Count(&n).Error)
	return n
}

func TestBulkUpsert_DedupWithinBatch(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	e := testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	first := row(lesson.ID, student, "absent", &e.ID)
	first.Note = strPtr("sick")
	second := row(lesson.ID, student, "present", &e.ID)

	n, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{first, second})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored []model.LessonAttendanceModel
	require.NoError(t, f.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, model.AttendancePresent, stored[0].Status)
	require.NotNil(t, stored[0].Note)
	assert.Equal(t, "sick", *stored[0].Note)
	require.NotNil(t, stored[0].EnrollmentID)
	assert.Equal(t, e.ID, *stored[0].EnrollmentID)
}

func TestBulkUpsert_SecondBatchUpdatesRow(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 0)
	student := uuid.New()
	testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", nil)})
	require.NoError(t, err)
	_, err = f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(lesson.ID, student, "late", nil)})
	require.NoError(t, err)

	var stored []model.LessonAttendanceModel
	require.NoError(t, f.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, model.AttendanceLate, stored[0].Status)
}

func TestBulkUpsert_TeacherOutsideWindowRejectsWholeBatch(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	old := f.lessonDaysAgo(t, 20)
	recent := f.lessonDaysAgo(t, 2)
	student := uuid.New()
	testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{
		row(recent.ID, student, "present", nil),
		row(old.ID, student, "present", nil),
	})
	requireFiberError(t, err, fiber.StatusForbidden, "Attendance can only be recorded within 14 days of the lesson date")
	assert.Zero(t, countAttendance(t, f.db))
}

func TestBulkUpsert_WindowBoundaries(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	student := uuid.New()
	testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	edge := f.lessonDaysAgo(t, 14)
	_, err := f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(edge.ID, student, "present", nil)})
	require.NoError(t, err)

	future := f.lessonDaysAgo(t, -1)
	_, err = f.svc.BulkUpsert(context.Background(), f.teacher, []dto.AttendanceRowRequest{row(future.ID, student, "present", nil)})
	requireFiberError(t, err, fiber.StatusForbidden, "")
}

func TestBulkUpsert_AdminBypassesWindow(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	old := f.lessonDaysAgo(t, 60)
	student := uuid.New()
	testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	n, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(old.ID, student, "excused", nil)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestBulkUpsert_LessonTeacherWithoutProgramAssignment(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	sub := testdb.Member(t, f.db, f.studio, studioModel.RoleTeacher)
	d := fixedNow.AddDate(0, 0, -1)
	lesson := testdb.Lesson(t, f.db, f.program.ID, testdb.Date(d.Year(), d.Month(), d.Day()), &sub)
	student := uuid.New()
	testdb.Enrollment(t, f.db, f.program, student, nil, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), helperAuth.Caller{UserID: sub}, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", nil)})
	require.NoError(t, err)

	outsider := testdb.Member(t, f.db, f.studio, studioModel.RoleTeacher)
	_, err = f.svc.BulkUpsert(context.Background(), helperAuth.Caller{UserID: outsider}, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", nil)})
	requireFiberError(t, err, fiber.StatusForbidden, "Forbidden")
}

func TestBulkUpsert_Validation(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 1)

	_, err := f.svc.BulkUpsert(context.Background(), f.admin, nil)
	requireFiberError(t, err, fiber.StatusBadRequest, "")

	_, err = f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, uuid.New(), "sleeping", nil)})
	requireFiberError(t, err, fiber.StatusBadRequest, `Row 1: invalid status "sleeping"`)

	_, err = f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(uuid.New(), uuid.New(), "present", nil)})
	requireFiberError(t, err, fiber.StatusNotFound, "Lesson not found")

	_, err = f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, uuid.New(), "present", nil)})
	requireFiberError(t, err, fiber.StatusBadRequest, MsgMissingEnrollment)

	other := testdb.Program(t, f.db, f.studio, testdb.ProgramOpts{})
	student := uuid.New()
	foreign := testdb.Enrollment(t, f.db, other, student, nil, enrollModel.EnrollmentActive)
	_, err = f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", &foreign.ID)})
	requireFiberError(t, err, fiber.StatusBadRequest, "Row 1: invalid enrollment_id")
}

func TestBulkUpsert_AmbiguousHolderNeedsEnrollmentID(t *testing.T) {
	f := newReconcilerFixture(t, testdb.Open(t))
	lesson := f.lessonDaysAgo(t, 1)
	parent := uuid.New()
	childA, childB := uuid.New(), uuid.New()
	testdb.Enrollment(t, f.db, f.program, parent, &childA, enrollModel.EnrollmentActive)
	b := testdb.Enrollment(t, f.db, f.program, parent, &childB, enrollModel.EnrollmentActive)

	_, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, parent, "present", nil)})
	requireFiberError(t, err, fiber.StatusBadRequest, MsgMissingEnrollment)

	n, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, parent, "present", &b.ID)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

/* =========================
   Legacy schemas
========================= */

// openLegacy builds a store whose lesson_attendances table is created by ddl.
func openLegacy(t *testing.T, ddl ...string) *gorm.DB {
	db := testdb.OpenEmpty(t)
	for _, m := range testdb.Models() {
		if _, ok := m.(*model.LessonAttendanceModel); ok {
			continue
		}
		require.NoError(t, db.AutoMigrate(m))
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

const legacyTable = `CREATE TABLE lesson_attendances (
	id TEXT PRIMARY KEY,
	lesson_id TEXT NOT NULL,
	enrollment_id TEXT,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	note TEXT,
	school_year_id TEXT,
	marked_by TEXT,
	created_at DATETIME,
	updated_at DATETIME
)`

func TestBulkUpsert_LegacyUserKeyFallback(t *testing.T) {
	db := openLegacy(t,
		legacyTable,
		`CREATE UNIQUE INDEX lesson_attendances_lesson_id_user_id_key ON lesson_attendances (lesson_id, user_id)`,
		`CREATE UNIQUE INDEX lesson_attendances_lesson_id_enrollment_id_key ON lesson_attendances (lesson_id, enrollment_id)`,
	)
	f := newReconcilerFixture(t, db)
	lesson := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	e := testdb.Enrollment(t, db, f.program, student, nil, enrollModel.EnrollmentActive)

	// a row written before enrollments existed
	require.NoError(t, db.Exec(
		`INSERT INTO lesson_attendances (id, lesson_id, user_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New(), lesson.ID, student, "absent", fixedNow, fixedNow,
	).Error)

	n, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", nil)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var stored []model.LessonAttendanceModel
	require.NoError(t, db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, model.AttendancePresent, stored[0].Status)
	require.NotNil(t, stored[0].EnrollmentID)
	assert.Equal(t, e.ID, *stored[0].EnrollmentID)
}

func TestBulkUpsert_MissingEnrollmentKeyUsesLegacyKey(t *testing.T) {
	db := openLegacy(t,
		legacyTable,
		`CREATE UNIQUE INDEX lesson_attendances_lesson_id_user_id_key ON lesson_attendances (lesson_id, user_id)`,
	)
	f := newReconcilerFixture(t, db)
	lesson := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	testdb.Enrollment(t, db, f.program, student, nil, enrollModel.EnrollmentActive)

	for _, st := range []string{"present", "late"} {
		_, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, student, st, nil)})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, countAttendance(t, db))
	assert.False(t, f.svc.Compat.ConflictKeyAvailable(database.AttendanceEnrollmentKey))
}

func TestBulkUpsert_MissingSchoolYearColumn(t *testing.T) {
	db := openLegacy(t,
		`CREATE TABLE lesson_attendances (
			id TEXT PRIMARY KEY,
			lesson_id TEXT NOT NULL,
			enrollment_id TEXT,
			user_id TEXT NOT NULL,
			status TEXT NOT NULL,
			note TEXT,
			marked_by TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE UNIQUE INDEX lesson_attendances_lesson_id_enrollment_id_key ON lesson_attendances (lesson_id, enrollment_id)`,
	)
	f := newReconcilerFixture(t, db)
	lesson := f.lessonDaysAgo(t, 1)
	student := uuid.New()
	testdb.Enrollment(t, db, f.program, student, nil, enrollModel.EnrollmentActive)

	n, err := f.svc.BulkUpsert(context.Background(), f.admin, []dto.AttendanceRowRequest{row(lesson.ID, student, "present", nil)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.False(t, f.svc.Compat.SupportsColumn(database.AttendanceSchoolYearColumn))
	assert.EqualValues(t, 1, countAttendance(t, db))
}

/* =========================
   Pure helpers
========================= */

func TestPickEnrollment(t *testing.T) {
	child := uuid.New()
	main := &enrollModel.EnrollmentModel{ID: uuid.New()}
	sub := &enrollModel.EnrollmentModel{ID: uuid.New(), SubProfileID: &child}
	sub2 := &enrollModel.EnrollmentModel{ID: uuid.New(), SubProfileID: &child}

	assert.Nil(t, pickEnrollment(nil))
	assert.Equal(t, sub, pickEnrollment([]*enrollModel.EnrollmentModel{sub}))
	assert.Equal(t, main, pickEnrollment([]*enrollModel.EnrollmentModel{sub, main}))
	assert.Nil(t, pickEnrollment([]*enrollModel.EnrollmentModel{sub, sub2}))
}

func TestDedupByEnrollment_KeepsNoteAcrossMerge(t *testing.T) {
	lesson, enrollment, user := uuid.New(), uuid.New(), uuid.New()
	sy := uuid.New()
	out := dedupByEnrollment([]record{
		{lessonID: lesson, enrollmentID: enrollment, userID: user, status: model.AttendanceAbsent, note: strPtr("flu"), schoolYearID: &sy},
		{lessonID: lesson, enrollmentID: enrollment, userID: user, status: model.AttendanceExcused},
		{lessonID: uuid.New(), enrollmentID: enrollment, userID: user, status: model.AttendancePresent},
	})
	require.Len(t, out, 2)
	assert.Equal(t, model.AttendanceExcused, out[0].status)
	assert.Equal(t, "flu", *out[0].note)
	assert.Equal(t, sy, *out[0].schoolYearID)
}
