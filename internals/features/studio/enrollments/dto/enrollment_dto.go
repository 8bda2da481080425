// file: internals/features/studio/enrollments/dto/enrollment_dto.go
package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dancestudio_backend/internals/features/studio/enrollments/model"
)

/* =========================================================
   REQUEST
========================================================= */

type EnrollRequest struct {
	ProgramID    string          `json:"program_id" validate:"required,uuid"`
	SubProfileID *string         `json:"sub_profile_id" validate:"omitempty,uuid"`
	FormData     json.RawMessage `json:"form_data"`
	// Waitlist asks to join the waitlist when the program is full.
	Waitlist bool `json:"waitlist"`
}

/* =========================================================
   RESPONSE
========================================================= */

type EnrollmentResponse struct {
	ID              uuid.UUID              `json:"id"`
	ProgramID       uuid.UUID              `json:"program_id"`
	StudioID        uuid.UUID              `json:"studio_id"`
	UserID          uuid.UUID              `json:"user_id"`
	SubProfileID    *uuid.UUID             `json:"sub_profile_id"`
	Status          model.EnrollmentStatus `json:"status"`
	FormData        json.RawMessage        `json:"form_data"`
	ProfileSnapshot json.RawMessage        `json:"profile_snapshot"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func FromModel(m *model.EnrollmentModel) EnrollmentResponse {
	return EnrollmentResponse{
		ID:              m.ID,
		ProgramID:       m.ProgramID,
		StudioID:        m.StudioID,
		UserID:          m.UserID,
		SubProfileID:    m.SubProfileID,
		Status:          m.Status,
		FormData:        rawOrEmpty(m.FormData),
		ProfileSnapshot: rawOrEmpty(m.ProfileSnapshot),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func FromModels(rows []model.EnrollmentModel) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func rawOrEmpty(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(b)
}
