package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

// RegisterPatientRequest is the public self-registration payload
type RegisterPatientRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FullName    string `json:"full_name" validate:"required,min=2"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
	DateOfBirth string `json:"date_of_birth" validate:"required,isodate"` // Format: YYYY-MM-DD
	Gender      string `json:"gender" validate:"required,oneof=M F"`
	Address     string `json:"address" validate:"omitempty"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID             uuid.UUID               `json:"id"`
	Email          string                  `json:"email"`
	FullName       string                  `json:"full_name"`
	Role           string                  `json:"role"`
	IsActive       bool                    `json:"is_active"`
	DoctorProfile  *DoctorProfileResponse  `json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfileResponse `json:"patient_profile,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// PatientProfileResponse is only present on patient accounts
type PatientProfileResponse struct {
	PhoneNumber string `json:"phone_number,omitempty"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address,omitempty"`
}
