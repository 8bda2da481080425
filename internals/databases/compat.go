package database

import (
	"log"
	"sync"

	"gorm.io/gorm"
)

// Columns and keys whose presence differs between migrated and
// not-yet-migrated databases.
var (
	AttendanceSchoolYearColumn = Column{Table: "lesson_attendances", Name: "school_year_id"}
	PayrollSchoolYearColumn    = Column{Table: "payrolls", Name: "school_year_id"}
	TimesheetSchoolYearColumn  = Column{Table: "timesheets", Name: "school_year_id"}

	AttendanceEnrollmentKey = UniqueKey{
		Table:      "lesson_attendances",
		Constraint: "lesson_attendances_lesson_id_enrollment_id_key",
		Columns:    []string{"lesson_id", "enrollment_id"},
	}
	AttendanceLegacyKey = UniqueKey{
		Table:      "lesson_attendances",
		Constraint: "lesson_attendances_lesson_id_user_id_key",
		Columns:    []string{"lesson_id", "user_id"},
	}
)

type Column struct {
	Table string
	Name  string
}

// SchemaCompat is the store's compatibility surface. It is probed once at
// startup; write paths consult it before the first attempt and downgrade it
// when the store proves otherwise at runtime.
type SchemaCompat struct {
	mu      sync.RWMutex
	columns map[Column]bool
	keys    map[string]bool
}

// NewSchemaCompat returns a compat that assumes the fully migrated schema.
func NewSchemaCompat() *SchemaCompat {
	return &SchemaCompat{
		columns: map[Column]bool{},
		keys:    map[string]bool{},
	}
}

// ProbeSchema inspects the live schema for every known compatibility point.
func ProbeSchema(db *gorm.DB) *SchemaCompat {
	sc := NewSchemaCompat()
	m := db.Migrator()

	for _, col := range []Column{AttendanceSchoolYearColumn, PayrollSchoolYearColumn, TimesheetSchoolYearColumn} {
		ok := m.HasColumn(col.Table, col.Name)
		sc.columns[col] = ok
		log.Printf("[SchemaCompat] column %s.%s present=%v", col.Table, col.Name, ok)
	}
	for _, key := range []UniqueKey{AttendanceEnrollmentKey, AttendanceLegacyKey} {
		ok := m.HasIndex(key.Table, key.Constraint) || m.HasConstraint(key.Table, key.Constraint)
		sc.keys[key.Constraint] = ok
		log.Printf("[SchemaCompat] unique key %s present=%v", key.Constraint, ok)
	}
	return sc
}

// SupportsColumn is true unless the column was found missing.
func (s *SchemaCompat) SupportsColumn(col Column) bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, known := s.columns[col]
	return !known || ok
}

func (s *SchemaCompat) MarkColumnMissing(col Column) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.columns[col] = false
	s.mu.Unlock()
	log.Printf("[SchemaCompat] column %s.%s marked missing", col.Table, col.Name)
}

// ConflictKeyAvailable is true unless the unique key was found missing.
func (s *SchemaCompat) ConflictKeyAvailable(key UniqueKey) bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, known := s.keys[key.Constraint]
	return !known || ok
}

func (s *SchemaCompat) MarkConflictKeyMissing(key UniqueKey) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.keys[key.Constraint] = false
	s.mu.Unlock()
	log.Printf("[SchemaCompat] unique key %s marked missing", key.Constraint)
}

// SetColumn and SetConflictKey pin a capability explicitly.
func (s *SchemaCompat) SetColumn(col Column, present bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.columns[col] = present
	s.mu.Unlock()
}

func (s *SchemaCompat) SetConflictKey(key UniqueKey, present bool) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.keys[key.Constraint] = present
	s.mu.Unlock()
}

// Snapshot reports every probed or downgraded capability, keyed
// "table.column" for columns and by constraint name for unique keys.
func (s *SchemaCompat) Snapshot() map[string]bool {
	out := map[string]bool{}
	if s == nil {
		return out
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for col, ok := range s.columns {
		out[col.Table+"."+col.Name] = ok
	}
	for name, ok := range s.keys {
		out[name] = ok
	}
	return out
}
