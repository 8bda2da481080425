// file: internals/features/studio/attendances/dto/attendance_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"dancestudio_backend/internals/features/studio/attendances/model"
	enrollModel "dancestudio_backend/internals/features/studio/enrollments/model"
)

/* =========================================================
   REQUEST: POST /api/attendances/bulk
========================================================= */

type AttendanceRowRequest struct {
	LessonID     string  `json:"lesson_id"`
	UserID       string  `json:"user_id"`
	EnrollmentID *string `json:"enrollment_id"`
	Status       string  `json:"status"`
	Note         *string `json:"note"`
}

// BulkAttendanceRequest accepts {"rows":[...]}; a bare array is also bound
// by the controller.
type BulkAttendanceRequest struct {
	Rows []AttendanceRowRequest `json:"rows"`
}

/* =========================================================
   RESPONSE
========================================================= */

type AttendanceResponse struct {
	ID           uuid.UUID              `json:"id"`
	LessonID     uuid.UUID              `json:"lesson_id"`
	EnrollmentID *uuid.UUID             `json:"enrollment_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Status       model.AttendanceStatus `json:"status"`
	Note         *string                `json:"note"`
	MarkedBy     *uuid.UUID             `json:"marked_by"`
	LessonDate   *string                `json:"lesson_date,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

func FromModel(m *model.LessonAttendanceModel) AttendanceResponse {
	return AttendanceResponse{
		ID:           m.ID,
		LessonID:     m.LessonID,
		EnrollmentID: m.EnrollmentID,
		UserID:       m.UserID,
		Status:       m.Status,
		Note:         m.Note,
		MarkedBy:     m.MarkedBy,
		UpdatedAt:    m.UpdatedAt,
	}
}

type AbsenceBrief struct {
	ID        uuid.UUID `json:"id"`
	Reason    *string   `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// LessonEnrollmentAttendance is one line of the staff lesson view.
type LessonEnrollmentAttendance struct {
	EnrollmentID uuid.UUID                    `json:"enrollment_id"`
	UserID       uuid.UUID                    `json:"user_id"`
	SubProfileID *uuid.UUID                   `json:"sub_profile_id"`
	Enrollment   enrollModel.EnrollmentStatus `json:"enrollment_status"`
	Status       *model.AttendanceStatus      `json:"status"`
	Records      []AttendanceResponse         `json:"records"`
	Absences     []AbsenceBrief               `json:"absences"`
}

type LessonAttendanceView struct {
	LessonID    uuid.UUID                    `json:"lesson_id"`
	LessonDate  string                       `json:"lesson_date"`
	ProgramID   uuid.UUID                    `json:"program_id"`
	Enrollments []LessonEnrollmentAttendance `json:"enrollments"`
}
