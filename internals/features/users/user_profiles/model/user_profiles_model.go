// file: internals/features/users/user_profiles/model/user_profiles_model.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ======================================================
   Model: user_profiles (1:1 with the auth user)
====================================================== */

type UserProfileModel struct {
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	FirstName   *string    `gorm:"column:first_name;type:varchar(80)" json:"first_name"`
	LastName    *string    `gorm:"column:last_name;type:varchar(80)" json:"last_name"`
	Email       *string    `gorm:"column:email;type:varchar(160)" json:"email"`
	Phone       *string    `gorm:"column:phone;type:varchar(40)" json:"phone"`
	DateOfBirth *time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth"`
	Street      *string    `gorm:"column:street;type:varchar(160)" json:"street"`
	HouseNumber *string    `gorm:"column:house_number;type:varchar(20)" json:"house_number"`
	PostalCode  *string    `gorm:"column:postal_code;type:varchar(20)" json:"postal_code"`
	City        *string    `gorm:"column:city;type:varchar(80)" json:"city"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (UserProfileModel) TableName() string { return "user_profiles" }

// MissingFields lists the fields an enrollment needs from a main profile,
// in a stable order.
func (p *UserProfileModel) MissingFields() []string {
	var missing []string
	check := func(name string, v *string) {
		if v == nil || strings.TrimSpace(*v) == "" {
			missing = append(missing, name)
		}
	}
	check("first_name", p.FirstName)
	check("last_name", p.LastName)
	if p.DateOfBirth == nil || p.DateOfBirth.IsZero() {
		missing = append(missing, "date_of_birth")
	}
	check("email", p.Email)
	check("phone", p.Phone)
	check("street", p.Street)
	check("house_number", p.HouseNumber)
	check("postal_code", p.PostalCode)
	check("city", p.City)
	return missing
}

// Snapshot is the frozen copy stored on an enrollment.
func (p *UserProfileModel) Snapshot() map[string]any {
	return map[string]any{
		"first_name":    deref(p.FirstName),
		"last_name":     deref(p.LastName),
		"email":         deref(p.Email),
		"phone":         deref(p.Phone),
		"date_of_birth": dateString(p.DateOfBirth),
		"street":        deref(p.Street),
		"house_number":  deref(p.HouseNumber),
		"postal_code":   deref(p.PostalCode),
		"city":          deref(p.City),
	}
}

/* ======================================================
   Model: sub_profiles (children managed by a parent account)
====================================================== */

type SubProfileModel struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ParentUserID uuid.UUID  `gorm:"column:parent_user_id;type:uuid;not null;index" json:"parent_user_id"`
	FirstName    *string    `gorm:"column:first_name;type:varchar(80)" json:"first_name"`
	LastName     *string    `gorm:"column:last_name;type:varchar(80)" json:"last_name"`
	DateOfBirth  *time.Time `gorm:"column:date_of_birth;type:date" json:"date_of_birth"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (SubProfileModel) TableName() string { return "sub_profiles" }

func (m *SubProfileModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (p *SubProfileModel) MissingFields() []string {
	var missing []string
	if p.FirstName == nil || strings.TrimSpace(*p.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if p.LastName == nil || strings.TrimSpace(*p.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if p.DateOfBirth == nil || p.DateOfBirth.IsZero() {
		missing = append(missing, "date_of_birth")
	}
	return missing
}

func (p *SubProfileModel) Snapshot() map[string]any {
	return map[string]any{
		"sub_profile_id": p.ID.String(),
		"first_name":     deref(p.FirstName),
		"last_name":      deref(p.LastName),
		"date_of_birth":  dateString(p.DateOfBirth),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func dateString(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
