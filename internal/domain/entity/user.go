package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the centralized authentication table
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role      Role      `gorm:"type:varchar(20);not null;index" json:"role"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	DoctorProfile  *DoctorProfile  `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfile `gorm:"foreignKey:UserID" json:"patient_profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) Active() bool {
	return u.IsActive != nil && *u.IsActive
}

// IsActiveDoctor reports whether u can be booked and shown in the directory.
func (u *User) IsActiveDoctor() bool {
	return u != nil && u.Role == RoleDoctor && u.Active()
}

// Specialization returns the doctor's current specialization, empty for non-doctors.
func (u *User) Specialization() string {
	if u.DoctorProfile == nil {
		return ""
	}
	return u.DoctorProfile.Specialization
}

// BoolPtr is a helper for the nullable IsActive column.
func BoolPtr(b bool) *bool {
	return &b
}

// DoctorFilter narrows the doctor directory.
type DoctorFilter struct {
	Specialization string // case-insensitive substring
	Name           string // case-insensitive substring
	ActiveOnly     bool
	Limit          int
	Offset         int
}
