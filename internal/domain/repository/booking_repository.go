package repository

import (
	"context"

	"medibook/internal/domain/entity"
	"medibook/pkg/apperror"
	"medibook/pkg/calendar"

	"github.com/google/uuid"
)

// ErrSlotTaken is returned by BookingRepository.Create when another booking already
// occupies the same (doctor, date, time slot).
var ErrSlotTaken = apperror.Conflict("SLOT_TAKEN", "slot already taken")

type BookingRepository interface {
	// Create inserts a booking. The store rejects a second occupying booking for the
	// same (doctor, date, time slot) with ErrSlotTaken.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date calendar.Date, timeSlot string) (*entity.Booking, error)
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date calendar.Date, statuses []entity.BookingStatus) ([]entity.Booking, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Booking, error)
	FindByDoctor(ctx context.Context, doctorID uuid.UUID, date *calendar.Date) ([]entity.Booking, error)
	// Transition moves a booking to status `to` only if its current status is one of `from`.
	// Returns affected rows: 1 = moved, 0 = lost the race or not in a source status.
	Transition(ctx context.Context, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus, fields entity.BookingFields) (int64, error)
	CountBySpecialtyAndStatus(ctx context.Context, from, to calendar.Date) ([]entity.SpecialtyStatusCount, error)
}
