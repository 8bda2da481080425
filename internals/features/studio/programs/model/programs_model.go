// file: internals/features/studio/programs/model/programs_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   Model: programs
====================================================== */

type ProgramModel struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID           uuid.UUID `gorm:"column:studio_id;type:uuid;not null;index" json:"studio_id"`
	Title              string    `gorm:"column:title;type:varchar(160);not null" json:"title"`
	Capacity           *int      `gorm:"column:capacity;type:integer" json:"capacity"`
	WaitlistEnabled    bool      `gorm:"column:waitlist_enabled;not null" json:"waitlist_enabled"`
	ManualFullOverride bool      `gorm:"column:manual_full_override;not null" json:"manual_full_override"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProgramModel) TableName() string { return "programs" }

func (m *ProgramModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// HasCapacityLimit: capacity only counts when set and positive.
func (m *ProgramModel) HasCapacityLimit() bool {
	return m.Capacity != nil && *m.Capacity > 0
}

// IsFull applies the admin override first, then the capacity limit.
func (m *ProgramModel) IsFull(activeCount int) bool {
	if m.ManualFullOverride {
		return true
	}
	return m.HasCapacityLimit() && activeCount >= *m.Capacity
}

/* ======================================================
   Model: program_teachers
====================================================== */

type ProgramTeacherModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProgramID uuid.UUID `gorm:"column:program_id;type:uuid;not null;uniqueIndex:program_teachers_program_id_user_id_key,priority:1" json:"program_id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:program_teachers_program_id_user_id_key,priority:2" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProgramTeacherModel) TableName() string { return "program_teachers" }

func (m *ProgramTeacherModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
