// file: internals/features/studio/absences/model/lesson_absences_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LessonAbsenceModel is a self-reported absence. It is informational only
// and never becomes an attendance row.
type LessonAbsenceModel struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	LessonID     uuid.UUID  `gorm:"column:lesson_id;type:uuid;not null;index:idx_lesson_absences_lesson" json:"lesson_id"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	EnrollmentID *uuid.UUID `gorm:"column:enrollment_id;type:uuid" json:"enrollment_id"`
	Reason       *string    `gorm:"column:reason;type:text" json:"reason"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (LessonAbsenceModel) TableName() string { return "lesson_absences" }

func (m *LessonAbsenceModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
