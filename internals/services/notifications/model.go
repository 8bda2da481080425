// file: internals/services/notifications/model.go
package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationModel struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:idx_notifications_user" json:"user_id"`
	Kind      string     `gorm:"column:kind;type:varchar(60);not null" json:"kind"`
	Title     string     `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Message   *string    `gorm:"column:message;type:text" json:"message"`
	ActionRef *string    `gorm:"column:action_ref;type:text" json:"action_ref"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (NotificationModel) TableName() string { return "notifications" }

func (m *NotificationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Kinds emitted by the studio flows.
const (
	KindEnrollmentCreated = "enrollment_created"
	KindWaitlistAccepted  = "waitlist_accepted"
	KindPayrollCreated    = "payroll_created"
	KindPayrollPaid       = "payroll_paid"
)
