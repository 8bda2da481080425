// file: internals/features/studio/compensations/model/teacher_compensation_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: payment method
====================================================== */

type PaymentMethod string

const (
	PaymentFactuur                PaymentMethod = "factuur"
	PaymentVrijwilligersvergoeding PaymentMethod = "vrijwilligersvergoeding"
	PaymentVerloning              PaymentMethod = "verloning"

	DefaultPaymentMethod = PaymentFactuur
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentFactuur, PaymentVrijwilligersvergoeding, PaymentVerloning:
		return true
	default:
		return false
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

/* ======================================================
   Model: teacher_compensation
====================================================== */

type TeacherCompensationModel struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID      uuid.UUID     `gorm:"column:studio_id;type:uuid;not null;uniqueIndex:teacher_compensation_studio_id_teacher_id_key,priority:1" json:"studio_id"`
	TeacherID     uuid.UUID     `gorm:"column:teacher_id;type:uuid;not null;uniqueIndex:teacher_compensation_studio_id_teacher_id_key,priority:2" json:"teacher_id"`
	PaymentMethod PaymentMethod `gorm:"column:payment_method;type:varchar(40);not null" json:"payment_method"`
	HourlyRate    float64       `gorm:"column:hourly_rate;type:numeric(12,2);not null" json:"hourly_rate"`
	TransportFee  float64       `gorm:"column:transport_fee;type:numeric(12,2);not null" json:"transport_fee"`
	Active        bool          `gorm:"column:active;not null" json:"active"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TeacherCompensationModel) TableName() string { return "teacher_compensation" }

func (m *TeacherCompensationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.PaymentMethod == "" {
		m.PaymentMethod = DefaultPaymentMethod
	}
	return nil
}
