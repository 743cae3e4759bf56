package converter

import (
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:              booking.ID,
		BookingCode:     booking.BookingCode,
		PatientID:       booking.PatientID,
		DoctorID:        booking.DoctorID,
		Date:            booking.Date.String(),
		TimeSlot:        booking.TimeSlot,
		Status:          string(booking.Status),
		Specialty:       booking.Specialty,
		Notes:           booking.Notes,
		CancelReason:    booking.CancelReason,
		RescheduledFrom: booking.RescheduledFrom,
		CreatedAt:       booking.CreatedAt,
		UpdatedAt:       booking.UpdatedAt,
	}

	// Include doctor and patient info if preloaded
	if booking.Doctor != nil {
		response.Doctor = PublicDoctorToResponse(booking.Doctor)
	}
	if booking.Patient != nil {
		response.Patient = UserToResponse(booking.Patient)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = *BookingToResponse(&bookings[i])
	}
	return responses
}
