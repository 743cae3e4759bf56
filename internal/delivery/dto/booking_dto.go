package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateBookingRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	Date     string    `json:"date" validate:"required,isodate"`
	TimeSlot string    `json:"time_slot" validate:"required,clock"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

type RescheduleBookingRequest struct {
	Date     string `json:"date" validate:"required,isodate"`
	TimeSlot string `json:"time_slot" validate:"required,clock"`
}

type CompleteBookingRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type BookingResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookingCode     string          `json:"booking_code"`
	PatientID       uuid.UUID       `json:"patient_id"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	Date            string          `json:"date"`
	TimeSlot        string          `json:"time_slot"`
	Status          string          `json:"status"`
	Specialty       string          `json:"specialty"`
	Notes           string          `json:"notes,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	RescheduledFrom *uuid.UUID      `json:"rescheduled_from,omitempty"`
	Doctor          *DoctorResponse `json:"doctor,omitempty"`
	Patient         *UserResponse   `json:"patient,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}
