// file: internals/features/studio/absences/dto/absence_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"dancestudio_backend/internals/features/studio/absences/model"
)

type CreateAbsenceRequest struct {
	LessonID     string  `json:"lesson_id" validate:"required,uuid"`
	EnrollmentID *string `json:"enrollment_id" validate:"omitempty,uuid"`
	Reason       *string `json:"reason" validate:"omitempty,max=1000"`
}

type AbsenceResponse struct {
	ID           uuid.UUID  `json:"id"`
	LessonID     uuid.UUID  `json:"lesson_id"`
	UserID       uuid.UUID  `json:"user_id"`
	EnrollmentID *uuid.UUID `json:"enrollment_id"`
	Reason       *string    `json:"reason"`
	CreatedAt    time.Time  `json:"created_at"`
}

func FromModel(m *model.LessonAbsenceModel) AbsenceResponse {
	return AbsenceResponse{
		ID:           m.ID,
		LessonID:     m.LessonID,
		UserID:       m.UserID,
		EnrollmentID: m.EnrollmentID,
		Reason:       m.Reason,
		CreatedAt:    m.CreatedAt,
	}
}

func FromModels(rows []model.LessonAbsenceModel) []AbsenceResponse {
	out := make([]AbsenceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
