package repository

import (
	"context"
	"errors"
	"time"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) domainRepo.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) Upsert(ctx context.Context, availability *entity.WeeklyAvailability) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}},
			DoUpdates: clause.AssignmentColumns([]string{"slots", "updated_at"}),
		}).
		Create(availability).Error
	if err != nil {
		return err
	}

	// the row may have existed with another id
	stored, err := r.FindByDoctorAndDay(ctx, availability.DoctorID, availability.DayOfWeek)
	if err != nil {
		return err
	}
	if stored != nil {
		*availability = *stored
	}
	return nil
}

func (r *availabilityRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.WeeklyAvailability, error) {
	var rows []entity.WeeklyAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *availabilityRepository) FindByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday) (*entity.WeeklyAvailability, error) {
	var row entity.WeeklyAvailability
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ?", doctorID, day).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
