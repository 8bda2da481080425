// file: internals/features/studio/timesheets/model/timesheets_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: timesheet status
====================================================== */

type TimesheetStatus string

const (
	TimesheetDraft     TimesheetStatus = "draft"
	TimesheetConfirmed TimesheetStatus = "confirmed"
)

func (s TimesheetStatus) Valid() bool {
	switch s {
	case TimesheetDraft, TimesheetConfirmed:
		return true
	default:
		return false
	}
}

func ParseTimesheetStatus(s string) (TimesheetStatus, bool) {
	st := TimesheetStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

/* ======================================================
   Model: timesheets
====================================================== */

type TimesheetModel struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID     uuid.UUID       `gorm:"column:studio_id;type:uuid;not null;uniqueIndex:timesheets_studio_teacher_period_key,priority:1" json:"studio_id"`
	TeacherID    uuid.UUID       `gorm:"column:teacher_id;type:uuid;not null;uniqueIndex:timesheets_studio_teacher_period_key,priority:2" json:"teacher_id"`
	Month        int             `gorm:"column:month;not null;uniqueIndex:timesheets_studio_teacher_period_key,priority:3" json:"month"`
	Year         int             `gorm:"column:year;not null;uniqueIndex:timesheets_studio_teacher_period_key,priority:4" json:"year"`
	Status       TimesheetStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
	SchoolYearID *uuid.UUID      `gorm:"column:school_year_id;type:uuid" json:"school_year_id"`
	Notes        *string         `gorm:"column:notes;type:text" json:"notes"`
	ConfirmedAt  *time.Time      `gorm:"column:confirmed_at" json:"confirmed_at"`
	ConfirmedBy  *uuid.UUID      `gorm:"column:confirmed_by;type:uuid" json:"confirmed_by"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Entries []TimesheetEntryModel `gorm:"foreignKey:TimesheetID;references:ID" json:"entries,omitempty"`
}

func (TimesheetModel) TableName() string { return "timesheets" }

func (m *TimesheetModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = TimesheetDraft
	}
	return nil
}

/* ======================================================
   Model: timesheet_entries
====================================================== */

type TimesheetEntryModel struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TimesheetID     uuid.UUID  `gorm:"column:timesheet_id;type:uuid;not null;index:idx_timesheet_entries_timesheet" json:"timesheet_id"`
	LessonID        *uuid.UUID `gorm:"column:lesson_id;type:uuid" json:"lesson_id"`
	Date            time.Time  `gorm:"column:date;type:date;not null" json:"date"`
	DurationMinutes int        `gorm:"column:duration_minutes;not null" json:"duration_minutes"`
	LessonFee       float64    `gorm:"column:lesson_fee;type:numeric(12,2);not null" json:"lesson_fee"`
	TransportFee    float64    `gorm:"column:transport_fee;type:numeric(12,2);not null" json:"transport_fee"`
	Description     *string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TimesheetEntryModel) TableName() string { return "timesheet_entries" }

func (m *TimesheetEntryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
