// Package testutil builds in-memory stores and fixtures for package tests.
package testutil

import (
	"testing"
	"time"

	"medibook/internal/domain/entity"
	"medibook/internal/infrastructure/database"
	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewTestDB returns a fresh in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:", "test")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// CreateDoctor inserts an active doctor with the given specialization.
func CreateDoctor(t *testing.T, db *gorm.DB, name, specialization string) *entity.User {
	t.Helper()
	u := &entity.User{
		Role:     entity.RoleDoctor,
		Email:    uuid.NewString() + "@doctor.test",
		Password: "x",
		FullName: name,
		IsActive: entity.BoolPtr(true),
		DoctorProfile: &entity.DoctorProfile{
			LicenseNumber:  "LIC-" + uuid.NewString()[:8],
			Specialization: specialization,
		},
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return u
}

// CreatePatient inserts an active patient.
func CreatePatient(t *testing.T, db *gorm.DB, name string) *entity.User {
	t.Helper()
	u := &entity.User{
		Role:     entity.RolePatient,
		Email:    uuid.NewString() + "@patient.test",
		Password: "x",
		FullName: name,
		IsActive: entity.BoolPtr(true),
		PatientProfile: &entity.PatientProfile{
			DateOfBirth: calendar.MustParseDate("1990-01-01"),
			Gender:      entity.GenderMale,
		},
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return u
}

// CreateAdmin inserts an active admin.
func CreateAdmin(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()
	u := &entity.User{
		Role:     entity.RoleAdmin,
		Email:    uuid.NewString() + "@admin.test",
		Password: "x",
		FullName: "Admin",
		IsActive: entity.BoolPtr(true),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return u
}

// SetTemplate stores the doctor's slots for one weekday.
func SetTemplate(t *testing.T, db *gorm.DB, doctorID uuid.UUID, day time.Weekday, slots ...string) {
	t.Helper()
	row := &entity.WeeklyAvailability{DoctorID: doctorID, DayOfWeek: day, Slots: entity.SlotList(slots)}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create template: %v", err)
	}
}

// NextWeekday returns the first date on or after today that falls on day.
func NextWeekday(day time.Weekday) calendar.Date {
	d := calendar.Today()
	for d.Weekday() != day {
		d = d.AddDays(1)
	}
	return d
}
