package database_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	database "dancestudio_backend/internals/databases"
	"dancestudio_backend/internals/databases/testdb"
)

func TestSchemaCompat_AssumesMigratedUntilToldOtherwise(t *testing.T) {
	sc := database.NewSchemaCompat()
	assert.True(t, sc.SupportsColumn(database.PayrollSchoolYearColumn))
	assert.True(t, sc.ConflictKeyAvailable(database.AttendanceEnrollmentKey))

	sc.MarkColumnMissing(database.PayrollSchoolYearColumn)
	sc.MarkConflictKeyMissing(database.AttendanceEnrollmentKey)
	assert.False(t, sc.SupportsColumn(database.PayrollSchoolYearColumn))
	assert.True(t, sc.SupportsColumn(database.AttendanceSchoolYearColumn))
	assert.False(t, sc.ConflictKeyAvailable(database.AttendanceEnrollmentKey))
	assert.True(t, sc.ConflictKeyAvailable(database.AttendanceLegacyKey))

	sc.SetColumn(database.PayrollSchoolYearColumn, true)
	assert.True(t, sc.SupportsColumn(database.PayrollSchoolYearColumn))
}

func TestSchemaCompat_NilIsPermissive(t *testing.T) {
	var sc *database.SchemaCompat
	assert.True(t, sc.SupportsColumn(database.AttendanceSchoolYearColumn))
	assert.True(t, sc.ConflictKeyAvailable(database.AttendanceLegacyKey))
	assert.NotPanics(t, func() {
		sc.MarkColumnMissing(database.AttendanceSchoolYearColumn)
		sc.MarkConflictKeyMissing(database.AttendanceLegacyKey)
		sc.SetColumn(database.TimesheetSchoolYearColumn, false)
		sc.SetConflictKey(database.AttendanceEnrollmentKey, false)
	})
	assert.True(t, sc.SupportsColumn(database.TimesheetSchoolYearColumn))
}

func TestSchemaCompat_ConcurrentMarks(t *testing.T) {
	sc := database.NewSchemaCompat()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc.MarkColumnMissing(database.AttendanceSchoolYearColumn)
			_ = sc.SupportsColumn(database.AttendanceSchoolYearColumn)
		}()
	}
	wg.Wait()
	assert.False(t, sc.SupportsColumn(database.AttendanceSchoolYearColumn))
}

func TestProbeSchema(t *testing.T) {
	full := database.ProbeSchema(testdb.Open(t))
	assert.True(t, full.SupportsColumn(database.AttendanceSchoolYearColumn))
	assert.True(t, full.SupportsColumn(database.PayrollSchoolYearColumn))
	assert.True(t, full.SupportsColumn(database.TimesheetSchoolYearColumn))
	assert.True(t, full.ConflictKeyAvailable(database.AttendanceEnrollmentKey))

	legacy := testdb.OpenEmpty(t)
	require.NoError(t, legacy.Exec(`CREATE TABLE lesson_attendances (
		id TEXT PRIMARY KEY,
		lesson_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		status TEXT NOT NULL
	)`).Error)
	require.NoError(t, legacy.Exec(`CREATE UNIQUE INDEX lesson_attendances_lesson_id_user_id_key ON lesson_attendances (lesson_id, user_id)`).Error)

	old := database.ProbeSchema(legacy)
	assert.False(t, old.SupportsColumn(database.AttendanceSchoolYearColumn))
	assert.False(t, old.SupportsColumn(database.PayrollSchoolYearColumn))
	assert.False(t, old.SupportsColumn(database.TimesheetSchoolYearColumn))
	assert.False(t, old.ConflictKeyAvailable(database.AttendanceEnrollmentKey))
	assert.True(t, old.ConflictKeyAvailable(database.AttendanceLegacyKey))
}

func TestSchemaCompat_Snapshot(t *testing.T) {
	var none *database.SchemaCompat
	assert.Empty(t, none.Snapshot())

	sc := database.NewSchemaCompat()
	sc.MarkColumnMissing(database.PayrollSchoolYearColumn)
	sc.SetConflictKey(database.AttendanceLegacyKey, true)
	assert.Equal(t, map[string]bool{
		"payrolls.school_year_id":                 false,
		"lesson_attendances_lesson_id_user_id_key": true,
	}, sc.Snapshot())
}
