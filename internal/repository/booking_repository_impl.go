package repository

import (
	"context"
	"errors"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"
	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActiveSlotIndex is the partial unique index that makes a slot bookable once.
const ActiveSlotIndex = "ux_bookings_active_slot"

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
	if isDuplicateKeyError(err, ActiveSlotIndex, "bookings.time_slot") {
		return domainRepo.ErrSlotTaken.Wrap(err)
	}
	return err
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Preload("Doctor.DoctorProfile").
		Preload("Patient").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date calendar.Date, timeSlot string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND time_slot = ? AND status IN ?", doctorID, date, timeSlot, entity.OccupyingStatuses).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date calendar.Date, statuses []entity.BookingStatus) ([]entity.Booking, error) {
	query := r.db.WithContext(ctx).Where("doctor_id = ? AND date = ?", doctorID, date)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var bookings []entity.Booking
	if err := query.Order("time_slot ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Preload("Doctor.DoctorProfile").
		Where("patient_id = ?", patientID).
		Order("date DESC, time_slot DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID, date *calendar.Date) ([]entity.Booking, error) {
	query := r.db.WithContext(ctx).
		Preload("Patient").
		Where("doctor_id = ?", doctorID)
	if date != nil {
		query = query.Where("date = ?", *date)
	}

	var bookings []entity.Booking
	if err := query.Order("date ASC, time_slot ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Transition atomically moves a booking out of one of the `from` statuses.
// Returns affected rows: 1 = success, 0 = current status not in `from` (prevents double-transition races).
func (r *bookingRepository) Transition(ctx context.Context, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus, fields entity.BookingFields) (int64, error) {
	updates := map[string]interface{}{"status": to}
	if fields.Notes != nil {
		updates["notes"] = *fields.Notes
	}
	if fields.CancelReason != nil {
		updates["cancel_reason"] = *fields.CancelReason
	}

	result := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) CountBySpecialtyAndStatus(ctx context.Context, from, to calendar.Date) ([]entity.SpecialtyStatusCount, error) {
	var rows []entity.SpecialtyStatusCount
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Select("specialty, status, COUNT(*) AS count").
		Where("date >= ? AND date <= ?", from, to).
		Group("specialty, status").
		Order("specialty ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
