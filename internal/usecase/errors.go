package usecase

import (
	"errors"

	"medibook/internal/domain/repository"
	"medibook/pkg/apperror"
)

// Authentication failures map to 401 and stay outside the apperror taxonomy.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrAccountInactive    = errors.New("account is deactivated")
)

var (
	ErrUserNotFound     = apperror.NotFound("USER_NOT_FOUND", "user not found")
	ErrDoctorNotFound   = apperror.NotFound("DOCTOR_NOT_FOUND", "doctor not found")
	ErrBookingNotFound  = apperror.NotFound("BOOKING_NOT_FOUND", "booking not found")
	ErrAuditLogNotFound = apperror.NotFound("AUDIT_LOG_NOT_FOUND", "audit log not found")

	ErrEmailTaken   = repository.ErrEmailTaken
	ErrLicenseTaken = repository.ErrLicenseTaken
	ErrSlotTaken    = repository.ErrSlotTaken
	ErrSlotLocked   = apperror.Conflict("SLOT_LOCKED", "slot is being booked by another request")

	ErrNotBookingOwner  = apperror.Forbidden("NOT_BOOKING_OWNER", "booking does not belong to you")
	ErrNotBookingDoctor = apperror.Forbidden("NOT_BOOKING_DOCTOR", "booking is not assigned to you")
	ErrNotScheduleOwner = apperror.Forbidden("NOT_SCHEDULE_OWNER", "you can only manage your own schedule")

	ErrBookingAlreadyCancelled = apperror.InvalidState("BOOKING_ALREADY_CANCELLED", "booking is already cancelled")
	ErrInvalidTransition       = apperror.InvalidState("INVALID_TRANSITION", "booking status does not allow this action")

	ErrInvalidDate     = apperror.Validation("INVALID_DATE", "date must be in YYYY-MM-DD format")
	ErrInvalidTimeSlot = apperror.Validation("INVALID_TIME_SLOT", "time slot must be in HH:MM format")
	ErrInvalidSlots    = apperror.Validation("INVALID_SLOTS", "slots must be unique HH:MM times")
	ErrInvalidDay      = apperror.Validation("INVALID_DAY", "day must be a weekday name or 0-6")
	ErrInvalidRange    = apperror.Validation("INVALID_RANGE", "invalid date range")
	ErrSlotNotOffered  = apperror.Validation("SLOT_NOT_OFFERED", "doctor does not offer this time slot on that day")
	ErrDateInPast      = apperror.Validation("DATE_IN_PAST", "cannot book a date in the past")
	ErrSameSlot        = apperror.Validation("SAME_SLOT", "new date and time slot equal the current ones")
)
