// file: internals/features/studio/evaluations/dto/evaluation_dto.go
package dto

import "encoding/json"

type UpdateSettingsRequest struct {
	Enabled            *bool     `json:"enabled"`
	VisibleToStudents  *bool     `json:"visible_to_students"`
	EditableByTeachers *bool     `json:"editable_by_teachers"`
	Criteria           *[]string `json:"criteria" validate:"omitempty,max=50,dive,required,max=80"`
}

type SettingsResponse struct {
	StudioID           string   `json:"studio_id"`
	Enabled            bool     `json:"enabled"`
	VisibleToStudents  bool     `json:"visible_to_students"`
	EditableByTeachers bool     `json:"editable_by_teachers"`
	Criteria           []string `json:"criteria"`
}

type UpsertEvaluationRequest struct {
	EnrollmentID string          `json:"enrollment_id" validate:"required,uuid"`
	Period       string          `json:"period" validate:"required,max=40"`
	Scores       json.RawMessage `json:"scores"`
	Comment      *string         `json:"comment" validate:"omitempty,max=4000"`
	IsPublished  *bool           `json:"is_published"`
}
