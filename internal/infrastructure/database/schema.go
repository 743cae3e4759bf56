package database

import (
	"fmt"

	"medibook/internal/domain/entity"

	"gorm.io/gorm"
)

// partialIndexes are not expressible as gorm tags.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_slot
		ON bookings (doctor_id, date, time_slot)
		WHERE status IN ('scheduled', 'confirmed')`,
}

// EnsureSchema creates tables from the entities. Used for SQLite; PostgreSQL
// schemas are owned by the SQL migrations.
func EnsureSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.User{},
		&entity.DoctorProfile{},
		&entity.PatientProfile{},
		&entity.WeeklyAvailability{},
		&entity.Booking{},
		&entity.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
