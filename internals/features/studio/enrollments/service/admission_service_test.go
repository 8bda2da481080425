package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dancestudio_backend/internals/databases/testdb"
	"dancestudio_backend/internals/features/studio/enrollments/model"
	programModel "dancestudio_backend/internals/features/studio/programs/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

type admissionFixture struct {
	db       *gorm.DB
	svc      *AdmissionService
	rec      *notifications.Recorder
	studioID uuid.UUID
	adminID  uuid.UUID
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	db := testdb.Open(t)
	studio := testdb.Studio(t, db)
	admin := testdb.Member(t, db, studio.ID, studioModel.RoleAdmin)
	rec := &notifications.Recorder{}
	return &admissionFixture{
		db:       db,
		svc:      NewAdmissionService(db, rec),
		rec:      rec,
		studioID: studio.ID,
		adminID:  admin,
	}
}

// newUser returns a caller with a complete profile.
func (f *admissionFixture) newUser(t *testing.T) helperAuth.Caller {
	id := uuid.New()
	testdb.CompleteProfile(t, f.db, id)
	return helperAuth.Caller{UserID: id}
}

func (f *admissionFixture) fill(t *testing.T, program programModel.ProgramModel, n int) {
	for i := 0; i < n; i++ {
		testdb.Enrollment(t, f.db, program, uuid.New(), nil, model.EnrollmentActive)
	}
}

func (f *admissionFixture) countRows(t *testing.T, programID, userID uuid.UUID) int64 {
	var n int64
	require.NoError(t, f.db.Model(&model.EnrollmentModel{}).
		Where("program_id = ? AND user_id = ?", programID, userID).
		Count(&n).Error)
	return n
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

func TestEnroll_NoCapacityNeverRejects(t *testing.T) {
	for _, capacity := range []*int{nil, testdb.Capacity(0), testdb.Capacity(-3)} {
		f := newAdmissionFixture(t)
		program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: capacity})
		f.fill(t, program, 25)

		res, err := f.svc.Enroll(context.Background(), f.newUser(t), EnrollInput{ProgramID: program.ID})
		require.NoError(t, err)
		assert.Equal(t, OutcomeActive, res.Outcome)
		assert.Equal(t, model.EnrollmentActive, res.Enrollment.Status)
	}
}

func TestEnroll_FullWithoutWaitlistRejects(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(3)})

	for i := 0; i < 3; i++ {
		res, err := f.svc.Enroll(context.Background(), f.newUser(t), EnrollInput{ProgramID: program.ID})
		require.NoError(t, err)
		assert.Equal(t, OutcomeActive, res.Outcome)
	}

	caller := f.newUser(t)
	_, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID, Waitlist: true})
	requireFiberError(t, err, fiber.StatusConflict, MsgProgramFull)
	assert.Zero(t, f.countRows(t, program.ID, caller.UserID))
}

func TestEnroll_ManualFullOverride(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{ManualFullOverride: true})

	_, err := f.svc.Enroll(context.Background(), f.newUser(t), EnrollInput{ProgramID: program.ID})
	requireFiberError(t, err, fiber.StatusConflict, MsgProgramFull)
}

func TestEnroll_AcceptedRowUpgradedInPlaceWhenFull(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(2), WaitlistEnabled: true})
	f.fill(t, program, 2)

	caller := f.newUser(t)
	accepted := testdb.Enrollment(t, f.db, program, caller.UserID, nil, model.EnrollmentWaitlistAccepted)

	res, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, accepted.ID, res.Enrollment.ID)
	assert.EqualValues(t, 1, f.countRows(t, program.ID, caller.UserID))

	var stored model.EnrollmentModel
	require.NoError(t, f.db.Where("id = ?", accepted.ID).Take(&stored).Error)
	assert.Equal(t, model.EnrollmentActive, stored.Status)
}

func TestEnroll_WaitlistRequiredScenario(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(10), WaitlistEnabled: true})
	f.fill(t, program, 10)

	caller := f.newUser(t)
	_, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	requireFiberError(t, err, fiber.StatusConflict, MsgWaitlistRequired)
	assert.Zero(t, f.countRows(t, program.ID, caller.UserID))
}

func TestEnroll_JoinWaitlistOnce(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(1), WaitlistEnabled: true})
	f.fill(t, program, 1)
	caller := f.newUser(t)

	first, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID, Waitlist: true})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWaitlisted, first.Outcome)

	second, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID, Waitlist: true})
	require.NoError(t, err)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)
	assert.EqualValues(t, 1, f.countRows(t, program.ID, caller.UserID))
	assert.Empty(t, f.rec.Calls(), "waitlist joins do not notify admins")
}

func TestEnroll_WaitlistedRowTakesFreedSeat(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(2), WaitlistEnabled: true})
	f.fill(t, program, 1)
	caller := f.newUser(t)
	waiting := testdb.Enrollment(t, f.db, program, caller.UserID, nil, model.EnrollmentWaitlisted)

	res, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, waiting.ID, res.Enrollment.ID)
	assert.EqualValues(t, 1, f.countRows(t, program.ID, caller.UserID))
}

func TestEnroll_AlreadyActive(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{})
	caller := f.newUser(t)
	testdb.Enrollment(t, f.db, program, caller.UserID, nil, model.EnrollmentActive)

	_, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	requireFiberError(t, err, fiber.StatusConflict, MsgAlreadyEnrolled)
}

func TestEnroll_MissingProfileFieldsComeFirst(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{ManualFullOverride: true})

	_, err := f.svc.Enroll(context.Background(), helperAuth.Caller{UserID: uuid.New()}, EnrollInput{ProgramID: program.ID})
	var mf *MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{
		"first_name", "last_name", "date_of_birth", "email", "phone",
		"street", "house_number", "postal_code", "city",
	}, mf.Fields)
}

func TestEnroll_SubProfileIsSeparateHolder(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(5)})
	caller := f.newUser(t)
	child := testdb.SubProfile(t, f.db, caller.UserID)

	_, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)
	res, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID, SubProfileID: &child.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Enrollment.SubProfileID)
	assert.Equal(t, child.ID, *res.Enrollment.SubProfileID)

	n, err := CountActive(context.Background(), f.db, program.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestEnroll_ForeignSubProfileNotFound(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{})
	other := testdb.SubProfile(t, f.db, uuid.New())

	_, err := f.svc.Enroll(context.Background(), f.newUser(t), EnrollInput{ProgramID: program.ID, SubProfileID: &other.ID})
	requireFiberError(t, err, fiber.StatusNotFound, "")
}

func TestEnroll_ActiveAddsMembershipAndNotifiesAdmins(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{})
	caller := f.newUser(t)

	_, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)

	role, err := helperAuth.ResolveStudioRole(context.Background(), f.db, f.studioID, caller.UserID)
	require.NoError(t, err)
	assert.Equal(t, studioModel.RoleStudent, role)

	calls := f.rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notifications.KindEnrollmentCreated, calls[0].Kind)
	assert.Equal(t, []uuid.UUID{f.adminID}, calls[0].UserIDs)
}

func TestEnroll_MembershipFailureKeepsEnrollment(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{})
	caller := f.newUser(t)
	require.NoError(t, f.db.Exec(`DROP TABLE studio_members`).Error)

	res, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeActive, res.Outcome)
	assert.Equal(t, model.EnrollmentActive, res.Enrollment.Status)

	var n int64
	require.NoError(t, f.db.Model(&model.EnrollmentModel{}).
		Where("program_id = ? AND user_id = ?", program.ID, caller.UserID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestEnroll_UnknownProgram(t *testing.T) {
	f := newAdmissionFixture(t)
	_, err := f.svc.Enroll(context.Background(), f.newUser(t), EnrollInput{ProgramID: uuid.New()})
	requireFiberError(t, err, fiber.StatusNotFound, "Program not found")
}
