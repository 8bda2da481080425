package notifications_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dancestudio_backend/internals/databases/testdb"
	emailsvc "dancestudio_backend/internals/services/email"
	"dancestudio_backend/internals/services/notifications"
)

func TestDispatcher_StoresAndMails(t *testing.T) {
	db := testdb.Open(t)
	withMail := uuid.New()
	profile := testdb.CompleteProfile(t, db, withMail)
	withoutProfile := uuid.New()

	mailer := emailsvc.NewConsoleServiceMock()
	d := notifications.NewDispatcher(db, mailer, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	d.Notify(ctx, []uuid.UUID{withMail, withoutProfile, withMail, uuid.Nil},
		notifications.KindPayrollPaid, "Payroll paid", "Your payroll has been paid.", "/payrolls/1")
	// delivery is detached from the request context
	cancel()
	d.Wait()

	var rows []notifications.NotificationModel
	require.NoError(t, db.Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, notifications.KindPayrollPaid, r.Kind)
		require.NotNil(t, r.ActionRef)
		assert.Equal(t, "/payrolls/1", *r.ActionRef)
	}

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, *profile.Email, sent[0].To[0].Address)
	assert.Equal(t, "Sam Jansen", sent[0].To[0].Name)
	assert.Equal(t, "Payroll paid", sent[0].Subject)
}

func TestDispatcher_NoRecipients(t *testing.T) {
	db := testdb.Open(t)
	mailer := emailsvc.NewConsoleServiceMock()
	d := notifications.NewDispatcher(db, mailer, 0)

	d.Notify(context.Background(), []uuid.UUID{uuid.Nil}, notifications.KindEnrollmentCreated, "x", "y", "")
	d.Wait()

	var n int64
	require.NoError(t, db.Model(&notifications.NotificationModel{}).Count(&n).Error)
	assert.Zero(t, n)
	assert.Empty(t, mailer.Sent())
}

func TestDispatcher_StoreFailureIsSwallowed(t *testing.T) {
	db := testdb.OpenEmpty(t)
	d := notifications.NewDispatcher(db, nil, time.Second)

	assert.NotPanics(t, func() {
		d.Notify(context.Background(), []uuid.UUID{uuid.New()}, notifications.KindWaitlistAccepted, "t", "m", "")
		d.Wait()
	})
}

func TestDedupe(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	assert.Equal(t, []uuid.UUID{a, b}, notifications.Dedupe([]uuid.UUID{a, uuid.Nil, b, a}))
	assert.Empty(t, notifications.Dedupe(nil))
}
