// file: internals/features/studio/studios/model/studio_members_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   ENUM: studio role
====================================================== */

type StudioRole string

const (
	RoleNone    StudioRole = ""
	RoleOwner   StudioRole = "owner"
	RoleAdmin   StudioRole = "admin"
	RoleTeacher StudioRole = "teacher"
	RoleStudent StudioRole = "student"
)

func ParseStudioRole(s string) (StudioRole, bool) {
	switch r := StudioRole(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleOwner, RoleAdmin, RoleTeacher, RoleStudent:
		return r, true
	case RoleNone:
		return RoleNone, false
	default:
		return RoleNone, false
	}
}

// IsAdmin: owner or admin of the studio.
func (r StudioRole) IsAdmin() bool {
	switch r {
	case RoleOwner, RoleAdmin:
		return true
	case RoleTeacher, RoleStudent, RoleNone:
		return false
	default:
		return false
	}
}

// IsStaff: admin or teacher.
func (r StudioRole) IsStaff() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleTeacher:
		return true
	case RoleStudent, RoleNone:
		return false
	default:
		return false
	}
}

func (r StudioRole) IsMember() bool { return r != RoleNone }

/* ======================================================
   Model: studio_members
====================================================== */

type StudioMemberModel struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	StudioID  uuid.UUID  `gorm:"column:studio_id;type:uuid;not null;uniqueIndex:studio_members_studio_id_user_id_key,priority:1" json:"studio_id"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:studio_members_studio_id_user_id_key,priority:2;index" json:"user_id"`
	Role      StudioRole `gorm:"column:role;type:varchar(20);not null" json:"role"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (StudioMemberModel) TableName() string { return "studio_members" }

func (m *StudioMemberModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
