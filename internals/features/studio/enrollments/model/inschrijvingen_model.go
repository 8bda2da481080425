// file: internals/features/studio/enrollments/model/inschrijvingen_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: enrollment status
====================================================== */

type EnrollmentStatus string

const (
	EnrollmentActive           EnrollmentStatus = "active"
	EnrollmentWaitlisted       EnrollmentStatus = "waitlisted"
	EnrollmentWaitlistAccepted EnrollmentStatus = "waitlist_accepted"
	EnrollmentCancelled        EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentWaitlisted, EnrollmentWaitlistAccepted, EnrollmentCancelled:
		return true
	default:
		return false
	}
}

func ParseEnrollmentStatus(s string) (EnrollmentStatus, bool) {
	st := EnrollmentStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// CountsTowardCapacity: only active rows occupy a seat.
func (s EnrollmentStatus) CountsTowardCapacity() bool {
	switch s {
	case EnrollmentActive:
		return true
	case EnrollmentWaitlisted, EnrollmentWaitlistAccepted, EnrollmentCancelled:
		return false
	default:
		return false
	}
}

/* ======================================================
   Model: inschrijvingen
====================================================== */

type EnrollmentModel struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProgramID       uuid.UUID        `gorm:"column:program_id;type:uuid;not null;index:idx_inschrijvingen_program_status,priority:1" json:"program_id"`
	StudioID        uuid.UUID        `gorm:"column:studio_id;type:uuid;not null" json:"studio_id"`
	UserID          uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index:idx_inschrijvingen_user" json:"user_id"`
	SubProfileID    *uuid.UUID       `gorm:"column:sub_profile_id;type:uuid" json:"sub_profile_id"`
	Status          EnrollmentStatus `gorm:"column:status;type:varchar(30);not null;index:idx_inschrijvingen_program_status,priority:2" json:"status"`
	FormData        datatypes.JSON   `gorm:"column:form_data;type:jsonb;not null" json:"form_data"`
	ProfileSnapshot datatypes.JSON   `gorm:"column:profile_snapshot;type:jsonb;not null" json:"profile_snapshot"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EnrollmentModel) TableName() string { return "inschrijvingen" }

func (m *EnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.FormData) == 0 {
		m.FormData = datatypes.JSON("{}")
	}
	if len(m.ProfileSnapshot) == 0 {
		m.ProfileSnapshot = datatypes.JSON("{}")
	}
	return nil
}

// SameHolder: same user and same (possibly absent) sub-profile.
func (m *EnrollmentModel) SameHolder(userID uuid.UUID, subProfileID *uuid.UUID) bool {
	if m.UserID != userID {
		return false
	}
	if m.SubProfileID == nil || subProfileID == nil {
		return m.SubProfileID == nil && subProfileID == nil
	}
	return *m.SubProfileID == *subProfileID
}

func (m *EnrollmentModel) IsMainProfile() bool { return m.SubProfileID == nil }
