// file: internals/features/studio/attendances/model/lesson_attendances_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: attendance status
====================================================== */

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceLate    AttendanceStatus = "late"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused, AttendanceLate:
		return true
	default:
		return false
	}
}

func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	st := AttendanceStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

/* ======================================================
   Model: lesson_attendances
   enrollment_id is NULL on legacy rows keyed by (lesson_id, user_id).
====================================================== */

type LessonAttendanceModel struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LessonID     uuid.UUID        `gorm:"column:lesson_id;type:uuid;not null;uniqueIndex:lesson_attendances_lesson_id_enrollment_id_key,priority:1" json:"lesson_id"`
	EnrollmentID *uuid.UUID       `gorm:"column:enrollment_id;type:uuid;uniqueIndex:lesson_attendances_lesson_id_enrollment_id_key,priority:2" json:"enrollment_id"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Status       AttendanceStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	Note         *string          `gorm:"column:note;type:text" json:"note"`
	SchoolYearID *uuid.UUID       `gorm:"column:school_year_id;type:uuid" json:"school_year_id"`
	MarkedBy     *uuid.UUID       `gorm:"column:marked_by;type:uuid" json:"marked_by"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LessonAttendanceModel) TableName() string { return "lesson_attendances" }

func (m *LessonAttendanceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *LessonAttendanceModel) IsLegacy() bool { return m.EnrollmentID == nil }
