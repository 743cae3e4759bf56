package dto

import (
	"github.com/google/uuid"
)

// Request DTOs

// SetDayAvailabilityRequest replaces the slot list of one weekday
type SetDayAvailabilityRequest struct {
	Slots []string `json:"slots" validate:"unique,dive,clock"`
}

// Response DTOs

type AvailabilityResponse struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	DayOfWeek string    `json:"day_of_week"`
	Slots     []string  `json:"slots"`
}

type AvailabilityRangeResponse struct {
	DoctorID uuid.UUID              `json:"doctor_id"`
	Days     []AvailabilityResponse `json:"days"`
}

type DayScheduleResponse struct {
	DayOfWeek string   `json:"day_of_week"`
	Day       int      `json:"day"`
	Slots     []string `json:"slots"`
}

type WeeklyScheduleResponse struct {
	DoctorID uuid.UUID             `json:"doctor_id"`
	Days     []DayScheduleResponse `json:"days"`
}
