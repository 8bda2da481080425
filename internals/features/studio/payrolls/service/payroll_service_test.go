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
	compModel "dancestudio_backend/internals/features/studio/compensations/model"
	"dancestudio_backend/internals/features/studio/payrolls/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	tsModel "dancestudio_backend/internals/features/studio/timesheets/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

type payrollFixture struct {
	db      *gorm.DB
	svc     *PayrollService
	rec     *notifications.Recorder
	studio  uuid.UUID
	admin   helperAuth.Caller
	teacher uuid.UUID
}

func newPayrollFixture(t *testing.T, db *gorm.DB) *payrollFixture {
	studio := testdb.Studio(t, db)
	admin := testdb.Member(t, db, studio.ID, studioModel.RoleOwner)
	teacher := testdb.Member(t, db, studio.ID, studioModel.RoleTeacher)
	rec := &notifications.Recorder{}
	return &payrollFixture{
		db:      db,
		svc:     NewPayrollService(db, database.NewSchemaCompat(), rec),
		rec:     rec,
		studio:  studio.ID,
		admin:   helperAuth.Caller{UserID: admin},
		teacher: teacher,
	}
}

func requireFiberError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var fe *fiber.Error
	require.True(t, errors.As(err, &fe), "expected *fiber.Error, got %v", err)
	assert.Equal(t, code, fe.Code)
	if msg != "" {
		assert.Equal(t, msg, fe.Message)
	}
}

func countPayrolls(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Table("payrolls").Count(&n).Error)
	return n
}

func TestCreatePayroll_IsIdempotent(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))
	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetConfirmed)
	testdb.Entry(t, f.db, ts.ID, testdb.Date(2026, time.February, 3), 60, 40, 5)
	testdb.Entry(t, f.db, ts.ID, testdb.Date(2026, time.February, 10), 90, 60, 5)

	first, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, first.TotalLessons)
	assert.Equal(t, 2.5, first.TotalHours)
	assert.Equal(t, 100.0, first.TotalLessonFees)
	assert.Equal(t, 10.0, first.TotalTransportFees)
	assert.Equal(t, 110.0, first.TotalAmount)
	assert.Equal(t, compModel.PaymentFactuur, first.PaymentMethod)
	assert.Equal(t, model.PayrollPending, first.Status)

	second, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countPayrolls(t, f.db))

	calls := f.rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notifications.KindPayrollCreated, calls[0].Kind)
	assert.Equal(t, []uuid.UUID{f.teacher}, calls[0].UserIDs)
}

func TestCreatePayroll_EmptyTimesheet(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))
	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 3, tsModel.TimesheetConfirmed)

	p, _, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.Zero(t, p.TotalLessons)
	assert.Zero(t, p.TotalHours)
	assert.Zero(t, p.TotalAmount)
}

func TestCreatePayroll_DraftTimesheetRejected(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))
	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetDraft)

	_, _, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	requireFiberError(t, err, fiber.StatusConflict, MsgTimesheetNotConfirmed)
	assert.Zero(t, countPayrolls(t, f.db))
}

func TestCreatePayroll_Guards(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))

	_, _, err := f.svc.Create(context.Background(), f.admin, f.studio, uuid.Nil)
	requireFiberError(t, err, fiber.StatusBadRequest, MsgMissingTimesheetID)

	_, _, err = f.svc.Create(context.Background(), f.admin, f.studio, uuid.New())
	requireFiberError(t, err, fiber.StatusNotFound, "")

	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetConfirmed)
	_, _, err = f.svc.Create(context.Background(), helperAuth.Caller{UserID: f.teacher}, f.studio, ts.ID)
	requireFiberError(t, err, fiber.StatusForbidden, "")

	// another studio's admin cannot read or derive this studio's payroll
	testdb.Entry(t, f.db, ts.ID, testdb.Date(2026, time.February, 3), 60, 40, 5)
	own, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	require.True(t, created)

	other := testdb.Studio(t, f.db)
	otherOwner := testdb.Member(t, f.db, other.ID, studioModel.RoleOwner)
	leaked, _, err := f.svc.Create(context.Background(), helperAuth.Caller{UserID: otherOwner}, other.ID, ts.ID)
	requireFiberError(t, err, fiber.StatusNotFound, "")
	assert.Nil(t, leaked)
	assert.EqualValues(t, 1, countPayrolls(t, f.db))

	again, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, own.ID, again.ID)
}

func TestCreatePayroll_PaymentMethodFromCompensation(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))
	testdb.Compensation(t, f.db, f.studio, f.teacher, compModel.PaymentVerloning, 30, 0)
	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetConfirmed)

	p, _, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.Equal(t, compModel.PaymentVerloning, p.PaymentMethod)
}

func TestCreatePayroll_WithoutSchoolYearColumn(t *testing.T) {
	db := testdb.OpenEmpty(t)
	for _, m := range testdb.Models() {
		if _, ok := m.(*model.PayrollModel); ok {
			continue
		}
		require.NoError(t, db.AutoMigrate(m))
	}
	require.NoError(t, db.Exec(`CREATE TABLE payrolls (
		id TEXT PRIMARY KEY,
		studio_id TEXT NOT NULL,
		teacher_id TEXT NOT NULL,
		timesheet_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		total_lessons INTEGER NOT NULL,
		total_hours REAL NOT NULL,
		total_lesson_fees REAL NOT NULL,
		total_transport_fees REAL NOT NULL,
		total_amount REAL NOT NULL,
		payment_method TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at DATETIME,
		created_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX payrolls_timesheet_id_key ON payrolls (timesheet_id)`).Error)

	f := newPayrollFixture(t, db)
	ts := testdb.Timesheet(t, db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetConfirmed)
	schoolYear := uuid.New()
	require.NoError(t, db.Model(&ts).Update("school_year_id", schoolYear).Error)
	testdb.Entry(t, db, ts.ID, testdb.Date(2026, time.February, 3), 60, 40, 0)

	p, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, p.SchoolYearID)
	assert.False(t, f.svc.Compat.SupportsColumn(database.PayrollSchoolYearColumn))

	again, created, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p.ID, again.ID)
	assert.EqualValues(t, 1, countPayrolls(t, db))
}

func TestPayroll_MarkPaidAndList(t *testing.T) {
	f := newPayrollFixture(t, testdb.Open(t))
	paidAt := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	f.svc.Clock = func() time.Time { return paidAt }
	ts := testdb.Timesheet(t, f.db, f.studio, f.teacher, 2026, 2, tsModel.TimesheetConfirmed)
	p, _, err := f.svc.Create(context.Background(), f.admin, f.studio, ts.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.admin, f.studio, p.ID, "settled")
	requireFiberError(t, err, fiber.StatusBadRequest, "Invalid status")

	updated, err := f.svc.UpdateStatus(context.Background(), f.admin, f.studio, p.ID, "paid")
	require.NoError(t, err)
	assert.Equal(t, model.PayrollPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, paidAt.Equal(*updated.PaidAt))

	calls := f.rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, notifications.KindPayrollPaid, calls[1].Kind)

	own, total, err := f.svc.List(context.Background(), helperAuth.Caller{UserID: f.teacher}, f.studio, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, model.PayrollPaid, own[0].Status)

	other := testdb.Member(t, f.db, f.studio, studioModel.RoleTeacher)
	none, _, err := f.svc.List(context.Background(), helperAuth.Caller{UserID: other}, f.studio, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}
