// file: internals/features/studio/timesheets/dto/timesheet_dto.go
package dto

type CreateTimesheetRequest struct {
	TeacherID    *string `json:"teacher_id" validate:"omitempty,uuid"`
	Month        int     `json:"month" validate:"required,min=1,max=12"`
	Year         int     `json:"year" validate:"required,min=2000,max=2100"`
	SchoolYearID *string `json:"school_year_id" validate:"omitempty,uuid"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

// AddEntryRequest: fees fall back to the teacher's compensation when omitted.
type AddEntryRequest struct {
	LessonID        *string  `json:"lesson_id" validate:"omitempty,uuid"`
	Date            string   `json:"date" validate:"required,datetime=2006-01-02"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1,max=1440"`
	LessonFee       *float64 `json:"lesson_fee" validate:"omitempty,gte=0"`
	TransportFee    *float64 `json:"transport_fee" validate:"omitempty,gte=0"`
	Description     *string  `json:"description" validate:"omitempty,max=1000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
