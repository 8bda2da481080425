package service

import (
	"context"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dancestudio_backend/internals/databases/testdb"
	"dancestudio_backend/internals/features/studio/enrollments/model"
	studioModel "dancestudio_backend/internals/features/studio/studios/model"
	helperAuth "dancestudio_backend/internals/helpers/auth"
	"dancestudio_backend/internals/services/notifications"
)

func TestWaitlist_AcceptThenEnrollActivatesSameRow(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{Capacity: testdb.Capacity(1), WaitlistEnabled: true})
	f.fill(t, program, 1)
	caller := f.newUser(t)

	joined, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID, Waitlist: true})
	require.NoError(t, err)

	wl := NewWaitlistService(f.db, f.rec)
	admin := helperAuth.Caller{UserID: f.adminID}

	rows, err := wl.List(context.Background(), admin, f.studioID, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, joined.Enrollment.ID, rows[0].ID)

	accepted, err := wl.Accept(context.Background(), admin, f.studioID, joined.Enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentWaitlistAccepted, accepted.Status)

	calls := f.rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, notifications.KindWaitlistAccepted, calls[0].Kind)
	assert.Equal(t, []uuid.UUID{caller.UserID}, calls[0].UserIDs)

	res, err := f.svc.Enroll(context.Background(), caller, EnrollInput{ProgramID: program.ID})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpgraded, res.Outcome)
	assert.Equal(t, joined.Enrollment.ID, res.Enrollment.ID)
	assert.EqualValues(t, 1, f.countRows(t, program.ID, caller.UserID))
}

func TestWaitlist_AcceptRules(t *testing.T) {
	f := newAdmissionFixture(t)
	program := testdb.Program(t, f.db, f.studioID, testdb.ProgramOpts{})
	wl := NewWaitlistService(f.db, nil)
	admin := helperAuth.Caller{UserID: f.adminID}

	active := testdb.Enrollment(t, f.db, program, uuid.New(), nil, model.EnrollmentActive)
	_, err := wl.Accept(context.Background(), admin, f.studioID, active.ID)
	requireFiberError(t, err, fiber.StatusConflict, "Enrollment is not on the waitlist")

	_, err = wl.Accept(context.Background(), admin, f.studioID, uuid.New())
	requireFiberError(t, err, fiber.StatusNotFound, "")

	already := testdb.Enrollment(t, f.db, program, uuid.New(), nil, model.EnrollmentWaitlistAccepted)
	row, err := wl.Accept(context.Background(), admin, f.studioID, already.ID)
	require.NoError(t, err)
	assert.Equal(t, already.ID, row.ID)

	teacher := testdb.Member(t, f.db, f.studioID, studioModel.RoleTeacher)
	_, err = wl.List(context.Background(), helperAuth.Caller{UserID: teacher}, f.studioID, nil)
	requireFiberError(t, err, fiber.StatusForbidden, "")
}
