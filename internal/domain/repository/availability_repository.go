package repository

import (
	"context"
	"time"

	"medibook/internal/domain/entity"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	// Upsert replaces the slot list of (doctor, day), creating the row if absent.
	Upsert(ctx context.Context, availability *entity.WeeklyAvailability) error
	FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]entity.WeeklyAvailability, error)
	FindByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday) (*entity.WeeklyAvailability, error)
}
