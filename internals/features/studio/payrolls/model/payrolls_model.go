// file: internals/features/studio/payrolls/model/payrolls_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	compModel "dancestudio_backend/internals/features/studio/compensations/model"
)

/* ======================================================
   ENUM: payroll status
====================================================== */

type PayrollStatus string

const (
	PayrollPending PayrollStatus = "pending"
	PayrollPaid    PayrollStatus = "paid"
)

func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollPending, PayrollPaid:
		return true
	default:
		return false
	}
}

func ParsePayrollStatus(s string) (PayrollStatus, bool) {
	st := PayrollStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

/* ======================================================
   Model: payrolls (one per confirmed timesheet)
====================================================== */

type PayrollModel struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID           uuid.UUID               `gorm:"column:studio_id;type:uuid;not null;index" json:"studio_id"`
	TeacherID          uuid.UUID               `gorm:"column:teacher_id;type:uuid;not null" json:"teacher_id"`
	TimesheetID        uuid.UUID               `gorm:"column:timesheet_id;type:uuid;not null;uniqueIndex:payrolls_timesheet_id_key" json:"timesheet_id"`
	Month              int                     `gorm:"column:month;not null" json:"month"`
	Year               int                     `gorm:"column:year;not null" json:"year"`
	SchoolYearID       *uuid.UUID              `gorm:"column:school_year_id;type:uuid" json:"school_year_id"`
	TotalLessons       int                     `gorm:"column:total_lessons;not null" json:"total_lessons"`
	TotalHours         float64                 `gorm:"column:total_hours;type:numeric(10,2);not null" json:"total_hours"`
	TotalLessonFees    float64                 `gorm:"column:total_lesson_fees;type:numeric(12,2);not null" json:"total_lesson_fees"`
	TotalTransportFees float64                 `gorm:"column:total_transport_fees;type:numeric(12,2);not null" json:"total_transport_fees"`
	TotalAmount        float64                 `gorm:"column:total_amount;type:numeric(12,2);not null" json:"total_amount"`
	PaymentMethod      compModel.PaymentMethod `gorm:"column:payment_method;type:varchar(40);not null" json:"payment_method"`
	Status             PayrollStatus           `gorm:"column:status;type:varchar(20);not null" json:"status"`
	PaidAt             *time.Time              `gorm:"column:paid_at" json:"paid_at"`
	CreatedBy          *uuid.UUID              `gorm:"column:created_by;type:uuid" json:"created_by"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (PayrollModel) TableName() string { return "payrolls" }

func (m *PayrollModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = PayrollPending
	}
	return nil
}
