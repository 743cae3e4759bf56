package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

type CreateDoctorRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,min=2"`
	LicenseNumber  string `json:"license_number" validate:"required,max=50"`
	Specialization string `json:"specialization" validate:"required,max=100"`
	Biography      string `json:"biography" validate:"omitempty"`
}

// UpdateDoctorRequest changes only the fields that are present
type UpdateDoctorRequest struct {
	FullName       *string `json:"full_name" validate:"omitempty,min=2"`
	LicenseNumber  *string `json:"license_number" validate:"omitempty,min=1,max=50"`
	Specialization *string `json:"specialization" validate:"omitempty,min=1,max=100"`
	Biography      *string `json:"biography" validate:"omitempty"`
}

type DoctorListQuery struct {
	Specialty string
	Name      string
	Page      int
	Limit     int
}

// Response DTOs

type DoctorProfileResponse struct {
	LicenseNumber  string `json:"license_number"`
	Specialization string `json:"specialization"`
	Biography      string `json:"biography,omitempty"`
}

type DoctorResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email,omitempty"`
	FullName       string    `json:"full_name"`
	LicenseNumber  string    `json:"license_number,omitempty"`
	Specialization string    `json:"specialization"`
	Biography      string    `json:"biography,omitempty"`
	IsActive       bool      `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int64            `json:"total"`
	Page    int              `json:"-"`
	Limit   int              `json:"-"`
}
