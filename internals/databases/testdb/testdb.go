// Package testdb opens in-memory sqlite stores carrying the studio schema and
// seeds the rows most tests need.
package testdb

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	absenceModel "dancestudio_backend/internals/features/studio/absences/model"
	attendanceModel "dancestudio_backend/internals/features/studio/attendances/model"
	compModel "dancestudio_backend/internals/features/studio/compensations/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
	evalModel "dancestudio_backend/internals/features/studio/evaluations/model"
	payrollModel "dancestudio_backend/internals/features/studio/payrolls/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	tsModel "dancestudio_backend/internals/features/studio/timesheets/model"
	profileModel "dancestudio_backend/internals/features/users/user_profiles/model"
	"dancestudio_backend/internals/services/notifications"
)

// Models lists every table the services touch, in creation order.
func Models() []interface{} {
	return []interface{}{
		&studioModel.StudioModel{},
		&studioModel.StudioMemberModel{},
		&profileModel.UserProfileModel{},
		&profileModel.SubProfileModel{},
		&programModel.ProgramModel{},
		&programModel.ProgramTeacherModel{},
		&programModel.LessonModel{},
		&enrollModel.EnrollmentModel{},
		&attendanceModel.LessonAttendanceModel{},
		&absenceModel.LessonAbsenceModel{},
		&compModel.TeacherCompensationModel{},
		&tsModel.TimesheetModel{},
		&tsModel.TimesheetEntryModel{},
		&payrollModel.PayrollModel{},
		&evalModel.EvaluationSettingsModel{},
		&evalModel.EvaluationModel{},
		&notifications.NotificationModel{},
	}
}

// Open returns a fresh store with the full schema. Each call gets its own
// database; one connection keeps the in-memory data alive.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenEmpty(t)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

// OpenEmpty returns a fresh store without tables, for legacy-schema tests.
func OpenEmpty(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=0", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

/* =========================
   Seeds
========================= */

func ptr[T any](v T) *T { return &v }

// Date builds a DATE value.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Studio(t testing.TB, db *gorm.DB) studioModel.StudioModel {
	t.Helper()
	s := studioModel.StudioModel{Name: "Studio", Slug: "studio-" + uuid.NewString()[:8]}
	require.NoError(t, db.Create(&s).Error)
	return s
}

func Member(t testing.TB, db *gorm.DB, studioID uuid.UUID, role studioModel.StudioRole) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	require.NoError(t, db.Create(&studioModel.StudioMemberModel{
		StudioID: studioID,
		UserID:   userID,
		Role:     role,
	}).Error)
	return userID
}

// CompleteProfile stores a user profile with every required field set.
func CompleteProfile(t testing.TB, db *gorm.DB, userID uuid.UUID) profileModel.UserProfileModel {
	t.Helper()
	p := profileModel.UserProfileModel{
		UserID:      userID,
		FirstName:   ptr("Sam"),
		LastName:    ptr("Jansen"),
		Email:       ptr(userID.String()[:8] + "@example.test"),
		Phone:       ptr("0612345678"),
		DateOfBirth: ptr(Date(2000, time.January, 2)),
		Street:      ptr("Dorpsstraat"),
		HouseNumber: ptr("1"),
		PostalCode:  ptr("1234AB"),
		City:        ptr("Utrecht"),
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func SubProfile(t testing.TB, db *gorm.DB, parentID uuid.UUID) profileModel.SubProfileModel {
	t.Helper()
	sp := profileModel.SubProfileModel{
		ParentUserID: parentID,
		FirstName:    ptr("Kim"),
		LastName:     ptr("Jansen"),
		DateOfBirth:  ptr(Date(2015, time.March, 4)),
	}
	require.NoError(t, db.Create(&sp).Error)
	return sp
}

type ProgramOpts struct {
	Capacity           *int
	WaitlistEnabled    bool
	ManualFullOverride bool
}

func Program(t testing.TB, db *gorm.DB, studioID uuid.UUID, o ProgramOpts) programModel.ProgramModel {
	t.Helper()
	p := programModel.ProgramModel{
		StudioID:           studioID,
		Title:              "Ballet",
		Capacity:           o.Capacity,
		WaitlistEnabled:    o.WaitlistEnabled,
		ManualFullOverride: o.ManualFullOverride,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func Capacity(n int) *int { return &n }

func AssignTeacher(t testing.TB, db *gorm.DB, programID, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&programModel.ProgramTeacherModel{ProgramID: programID, UserID: userID}).Error)
}

func Lesson(t testing.TB, db *gorm.DB, programID uuid.UUID, date time.Time, teacherID *uuid.UUID) programModel.LessonModel {
	t.Helper()
	l := programModel.LessonModel{ProgramID: programID, Date: date, TeacherID: teacherID}
	require.NoError(t, db.Create(&l).Error)
	return l
}

func Enrollment(t testing.TB, db *gorm.DB, program programModel.ProgramModel, userID uuid.UUID, subProfileID *uuid.UUID, status enrollModel.EnrollmentStatus) enrollModel.EnrollmentModel {
	t.Helper()
	e := enrollModel.EnrollmentModel{
		ProgramID:    program.ID,
		StudioID:     program.StudioID,
		UserID:       userID,
		SubProfileID: subProfileID,
		Status:       status,
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func Compensation(t testing.TB, db *gorm.DB, studioID, teacherID uuid.UUID, method compModel.PaymentMethod, hourly, transport float64) {
	t.Helper()
	require.NoError(t, db.Create(&compModel.TeacherCompensationModel{
		StudioID:      studioID,
		TeacherID:     teacherID,
		PaymentMethod: method,
		HourlyRate:    hourly,
		TransportFee:  transport,
		Active:        true,
	}).Error)
}

func Timesheet(t testing.TB, db *gorm.DB, studioID, teacherID uuid.UUID, year, month int, status tsModel.TimesheetStatus) tsModel.TimesheetModel {
	t.Helper()
	ts := tsModel.TimesheetModel{
		StudioID:  studioID,
		TeacherID: teacherID,
		Year:      year,
		Month:     month,
		Status:    status,
	}
	require.NoError(t, db.Create(&ts).Error)
	return ts
}

func Entry(t testing.TB, db *gorm.DB, timesheetID uuid.UUID, date time.Time, minutes int, lessonFee, transportFee float64) {
	t.Helper()
	require.NoError(t, db.Create(&tsModel.TimesheetEntryModel{
		TimesheetID:     timesheetID,
		Date:            date,
		DurationMinutes: minutes,
		LessonFee:       lessonFee,
		TransportFee:    transportFee,
	}).Error)
}
