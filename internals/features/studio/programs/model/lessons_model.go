// file: internals/features/studio/programs/model/lessons_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonModel is created by the scheduling tools; this service only reads it.
type LessonModel struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProgramID    uuid.UUID  `gorm:"column:program_id;type:uuid;not null;index" json:"program_id"`
	Date         time.Time  `gorm:"column:date;type:date;not null" json:"date"`
	TeacherID    *uuid.UUID `gorm:"column:teacher_id;type:uuid" json:"teacher_id,omitempty"`
	SchoolYearID *uuid.UUID `gorm:"column:school_year_id;type:uuid" json:"school_year_id,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LessonModel) TableName() string { return "lessons" }

func (m *LessonModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
