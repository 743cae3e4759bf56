package usecase

import (
	"context"
	"errors"
	"time"

	"medibook/internal/converter"
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"
	"medibook/internal/service"
	"medibook/pkg/calendar"
	"medibook/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	RescheduledCancelReason = "rescheduled"

	// bounds the cancel of a replacement booking once the caller has gone away
	compensationTimeout = 5 * time.Second
)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, patientID, doctorID uuid.UUID, date calendar.Date, timeSlot string) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, reason string) (*dto.BookingResponse, error)
	ConfirmBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error)
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, notes string) (*dto.BookingResponse, error)
	MarkNoShow(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error)
	RescheduleBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, newDate calendar.Date, newSlot string) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error)
	ListMyBookings(ctx context.Context, patientID uuid.UUID) (*dto.BookingListResponse, error)
	ListDoctorBookings(ctx context.Context, doctorID uuid.UUID, date *calendar.Date) (*dto.BookingListResponse, error)
}

type bookingUsecase struct {
	log              *logrus.Logger
	userRepo         repository.UserRepository
	bookingRepo      repository.BookingRepository
	availabilityRepo repository.AvailabilityRepository
	locker           service.SlotLocker
	cache            service.AvailabilityCache
	auditService     service.AuditService
	today            func() calendar.Date
}

func NewBookingUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	availabilityRepo repository.AvailabilityRepository,
	locker service.SlotLocker,
	cache service.AvailabilityCache,
	auditService service.AuditService,
) BookingUsecase {
	return &bookingUsecase{
		log:              log,
		userRepo:         userRepo,
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		locker:           locker,
		cache:            cache,
		auditService:     auditService,
		today:            calendar.Today,
	}
}

// CreateBooking reserves one slot for a patient.
//
// Flow:
// 1. Doctor exists and is active
// 2. Slot is a valid HH:MM offered by the template for date.Weekday(), date not in the past
// 3. Acquire per-slot lock (contention -> Conflict)
// 4. Pre-check for an occupying booking on (doctor, date, slot)
// 5. Insert; the store's partial unique index is the final guard
// 6. Release lock, invalidate cached availability, audit
func (u *bookingUsecase) CreateBooking(ctx context.Context, patientID, doctorID uuid.UUID, date calendar.Date, timeSlot string) (*dto.BookingResponse, error) {
	booking, err := u.create(ctx, patientID, doctorID, date, timeSlot, nil)
	if err != nil {
		return nil, err
	}

	u.auditService.LogCreate(ctx, &patientID, entity.AuditActionBookingCreate, "booking", booking.ID.String(), converter.BookingToResponse(booking))
	return u.reload(ctx, booking), nil
}

func (u *bookingUsecase) create(ctx context.Context, patientID, doctorID uuid.UUID, date calendar.Date, timeSlot string, rescheduledFrom *uuid.UUID) (*entity.Booking, error) {
	// Step 1: doctor
	doctor, err := findDoctor(ctx, u.log, u.userRepo, doctorID, true)
	if err != nil {
		return nil, err
	}

	// Step 2: slot and date
	if !calendar.IsClock(timeSlot) {
		return nil, ErrInvalidTimeSlot
	}
	template, err := u.availabilityRepo.FindByDoctorAndDay(ctx, doctorID, date.Weekday())
	if err != nil {
		u.log.Warnf("Failed to find template for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if template == nil || !template.Slots.Contains(timeSlot) {
		metrics.RecordBooking(metrics.OutcomeRejected)
		return nil, ErrSlotNotOffered
	}
	if date.Before(u.today()) {
		metrics.RecordBooking(metrics.OutcomeRejected)
		return nil, ErrDateInPast
	}

	// Step 3: lock
	release, err := u.locker.Acquire(ctx, doctorID, date, timeSlot)
	if err != nil {
		if errors.Is(err, service.ErrSlotLocked) {
			metrics.RecordLockContention()
			metrics.RecordBooking(metrics.OutcomeConflict)
			return nil, ErrSlotLocked
		}
		u.log.Warnf("Failed to lock slot %s %s for doctor %s: %+v", date, timeSlot, doctorID, err)
		return nil, err
	}
	defer release()

	// Step 4: pre-check
	existing, err := u.bookingRepo.FindActiveBySlot(ctx, doctorID, date, timeSlot)
	if err != nil {
		u.log.Warnf("Failed to check slot %s %s for doctor %s: %+v", date, timeSlot, doctorID, err)
		return nil, err
	}
	if existing != nil {
		metrics.RecordBooking(metrics.OutcomeConflict)
		return nil, ErrSlotTaken
	}

	// Step 5: insert
	booking := &entity.Booking{
		PatientID:       patientID,
		DoctorID:        doctorID,
		Date:            date,
		TimeSlot:        timeSlot,
		Status:          entity.BookingStatusScheduled,
		Specialty:       doctor.Specialization(),
		RescheduledFrom: rescheduledFrom,
	}
	if err := u.bookingRepo.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			metrics.RecordBooking(metrics.OutcomeConflict)
			return nil, ErrSlotTaken
		}
		metrics.RecordBooking(metrics.OutcomeError)
		u.log.Warnf("Failed to insert booking for doctor %s at %s %s: %+v", doctorID, date, timeSlot, err)
		return nil, err
	}

	// Step 6
	u.invalidate(ctx, doctorID, date)
	metrics.RecordBooking(metrics.OutcomeCreated)
	u.log.Infof("Booking created: id=%s, doctor=%s, date=%s, slot=%s, code=%s", booking.ID, doctorID, date, timeSlot, booking.BookingCode)
	return booking, nil
}

// CancelBooking frees the slot. Only the owning patient or an admin may cancel,
// and cancelling twice is reported, never ignored.
func (u *bookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, reason string) (*dto.BookingResponse, error) {
	booking, err := u.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !booking.IsOwnedByPatient(actor.UserID) {
		return nil, ErrNotBookingOwner
	}

	fields := entity.BookingFields{}
	if reason != "" {
		fields.CancelReason = &reason
	}
	updated, err := u.transition(ctx, booking, entity.BookingStatusCancelled, fields)
	if err != nil {
		return nil, err
	}

	u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionBookingCancel, "booking", booking.ID.String(), string(booking.Status), string(updated.Status))
	return converter.BookingToResponse(updated), nil
}

func (u *bookingUsecase) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error) {
	return u.doctorTransition(ctx, bookingID, actor, entity.BookingStatusConfirmed, entity.AuditActionBookingConfirm, entity.BookingFields{})
}

func (u *bookingUsecase) CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, notes string) (*dto.BookingResponse, error) {
	fields := entity.BookingFields{}
	if notes != "" {
		fields.Notes = &notes
	}
	return u.doctorTransition(ctx, bookingID, actor, entity.BookingStatusCompleted, entity.AuditActionBookingComplete, fields)
}

func (u *bookingUsecase) MarkNoShow(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error) {
	return u.doctorTransition(ctx, bookingID, actor, entity.BookingStatusNoShow, entity.AuditActionBookingNoShow, entity.BookingFields{})
}

func (u *bookingUsecase) doctorTransition(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, to entity.BookingStatus, action string, fields entity.BookingFields) (*dto.BookingResponse, error) {
	booking, err := u.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !booking.IsOwnedByDoctor(actor.UserID) {
		return nil, ErrNotBookingDoctor
	}

	updated, err := u.transition(ctx, booking, to, fields)
	if err != nil {
		return nil, err
	}

	u.auditService.LogUpdate(ctx, &actor.UserID, action, "booking", booking.ID.String(), string(booking.Status), string(updated.Status))
	return converter.BookingToResponse(updated), nil
}

// transition applies booking -> to as a conditional update on the current
// status, so of two concurrent requests only one wins.
func (u *bookingUsecase) transition(ctx context.Context, booking *entity.Booking, to entity.BookingStatus, fields entity.BookingFields) (*entity.Booking, error) {
	if err := checkTransition(booking.Status, to); err != nil {
		return nil, err
	}

	affected, err := u.bookingRepo.Transition(ctx, booking.ID, entity.SourcesFor(to), to, fields)
	if err != nil {
		u.log.Warnf("Failed to move booking %s to %s: %+v", booking.ID, to, err)
		return nil, err
	}

	updated, err := u.find(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// lost a race; report against the status that won
		if err := checkTransition(updated.Status, to); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	if booking.Status.Occupies() && !to.Occupies() {
		u.invalidate(ctx, booking.DoctorID, booking.Date)
	}
	metrics.RecordTransition(string(to))
	u.log.Infof("Booking %s moved %s -> %s", booking.ID, booking.Status, to)
	return updated, nil
}

func checkTransition(from, to entity.BookingStatus) error {
	if from.CanTransitionTo(to) {
		return nil
	}
	if from == entity.BookingStatusCancelled && to == entity.BookingStatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	return ErrInvalidTransition.WithMessage("cannot move booking from " + string(from) + " to " + string(to))
}

// RescheduleBooking books the new slot first and only then cancels the
// original, so a conflict on the new slot leaves the original untouched.
func (u *bookingUsecase) RescheduleBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor, newDate calendar.Date, newSlot string) (*dto.BookingResponse, error) {
	original, err := u.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !original.IsOwnedByPatient(actor.UserID) {
		return nil, ErrNotBookingOwner
	}
	if !original.Status.Occupies() {
		return nil, checkTransition(original.Status, entity.BookingStatusCancelled)
	}
	if original.Date == newDate && original.TimeSlot == newSlot {
		return nil, ErrSameSlot
	}

	replacement, err := u.create(ctx, original.PatientID, original.DoctorID, newDate, newSlot, &original.ID)
	if err != nil {
		return nil, err
	}

	reason := RescheduledCancelReason
	if _, err := u.transition(ctx, original, entity.BookingStatusCancelled, entity.BookingFields{CancelReason: &reason}); err != nil {
		u.log.Warnf("Failed to cancel rescheduled booking %s, compensating new booking %s: %+v", original.ID, replacement.ID, err)

		compensateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
		defer cancel()
		if _, cErr := u.transition(compensateCtx, replacement, entity.BookingStatusCancelled, entity.BookingFields{CancelReason: &reason}); cErr != nil {
			u.log.Errorf("CRITICAL: Failed to compensate booking %s after reschedule failure: %+v", replacement.ID, cErr)
		}
		return nil, err
	}

	u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionBookingReschedule, "booking", original.ID.String(),
		map[string]string{"date": original.Date.String(), "time_slot": original.TimeSlot},
		map[string]string{"booking_id": replacement.ID.String(), "date": newDate.String(), "time_slot": newSlot},
	)
	return u.reload(ctx, replacement), nil
}

// GetBooking is visible to the patient, the doctor and admins.
func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID, actor entity.Actor) (*dto.BookingResponse, error) {
	booking, err := u.find(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !booking.IsOwnedByPatient(actor.UserID) && !booking.IsOwnedByDoctor(actor.UserID) {
		return nil, ErrNotBookingOwner
	}
	return converter.BookingToResponse(booking), nil
}

func (u *bookingUsecase) ListMyBookings(ctx context.Context, patientID uuid.UUID) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindByPatient(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) ListDoctorBookings(ctx context.Context, doctorID uuid.UUID, date *calendar.Date) (*dto.BookingListResponse, error) {
	if _, err := findDoctor(ctx, u.log, u.userRepo, doctorID, false); err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByDoctor(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to find bookings for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

func (u *bookingUsecase) find(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := u.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// reload fetches the booking with doctor and patient for the response.
func (u *bookingUsecase) reload(ctx context.Context, booking *entity.Booking) *dto.BookingResponse {
	full, err := u.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return converter.BookingToResponse(booking)
	}
	return converter.BookingToResponse(full)
}

func (u *bookingUsecase) invalidate(ctx context.Context, doctorID uuid.UUID, date calendar.Date) {
	if err := u.cache.Invalidate(ctx, doctorID, date); err != nil {
		u.log.Warnf("Failed to invalidate availability cache for doctor %s on %s: %+v", doctorID, date, err)
	}
}

