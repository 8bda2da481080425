// file: internals/features/studio/evaluations/model/evaluations_model.go
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/* ======================================================
   Model: studio_evaluation_settings (one row per studio)
====================================================== */

type EvaluationSettingsModel struct {
	StudioID           uuid.UUID      `gorm:"column:studio_id;type:uuid;primaryKey" json:"studio_id"`
	Enabled            bool           `gorm:"column:enabled;not null" json:"enabled"`
	VisibleToStudents  bool           `gorm:"column:visible_to_students;not null" json:"visible_to_students"`
	EditableByTeachers bool           `gorm:"column:editable_by_teachers;not null" json:"editable_by_teachers"`
	Criteria           datatypes.JSON `gorm:"column:criteria;type:jsonb;not null" json:"criteria"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EvaluationSettingsModel) TableName() string { return "studio_evaluation_settings" }

// DefaultEvaluationSettings mirrors the column defaults for studios that
// never saved settings.
func DefaultEvaluationSettings(studioID uuid.UUID) EvaluationSettingsModel {
	return EvaluationSettingsModel{
		StudioID:           studioID,
		EditableByTeachers: true,
		Criteria:           datatypes.JSON("[]"),
	}
}

func (m *EvaluationSettingsModel) CriteriaLabels() []string {
	var labels []string
	if len(m.Criteria) == 0 {
		return labels
	}
	_ = json.Unmarshal(m.Criteria, &labels)
	return labels
}

/* ======================================================
   Model: evaluations
====================================================== */

type EvaluationModel struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID     uuid.UUID      `gorm:"column:studio_id;type:uuid;not null;index" json:"studio_id"`
	ProgramID    uuid.UUID      `gorm:"column:program_id;type:uuid;not null" json:"program_id"`
	EnrollmentID uuid.UUID      `gorm:"column:enrollment_id;type:uuid;not null;uniqueIndex:evaluations_enrollment_id_period_key,priority:1" json:"enrollment_id"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	TeacherID    *uuid.UUID     `gorm:"column:teacher_id;type:uuid" json:"teacher_id"`
	Period       string         `gorm:"column:period;type:varchar(40);not null;uniqueIndex:evaluations_enrollment_id_period_key,priority:2" json:"period"`
	Scores       datatypes.JSON `gorm:"column:scores;type:jsonb;not null" json:"scores"`
	Comment      *string        `gorm:"column:comment;type:text" json:"comment"`
	IsPublished  bool           `gorm:"column:is_published;not null" json:"is_published"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EvaluationModel) TableName() string { return "evaluations" }

func (m *EvaluationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if len(m.Scores) == 0 {
		m.Scores = datatypes.JSON("{}")
	}
	return nil
}
