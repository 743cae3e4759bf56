package entity

import (
	"crypto/rand"
	"fmt"
	"time"

	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// OccupyingStatuses hold their slot. Matches the filter of the partial unique index.
var OccupyingStatuses = []BookingStatus{BookingStatusScheduled, BookingStatusConfirmed}

var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusScheduled: {BookingStatusConfirmed, BookingStatusCompleted, BookingStatusNoShow, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusNoShow, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusScheduled, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted || s == BookingStatusNoShow
}

func (s BookingStatus) Occupies() bool {
	return s == BookingStatusScheduled || s == BookingStatusConfirmed
}

// CanTransitionTo reports whether s -> next is an edge of the booking state machine.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesFor lists every status that may move to next.
func SourcesFor(next BookingStatus) []BookingStatus {
	var from []BookingStatus
	for _, s := range []BookingStatus{BookingStatusScheduled, BookingStatusConfirmed} {
		if s.CanTransitionTo(next) {
			from = append(from, s)
		}
	}
	return from
}

// Booking is one reservation of one slot on one date for one patient with one doctor.
// Records are never deleted; the lifecycle runs through Status.
type Booking struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BookingCode     string        `gorm:"type:varchar(32);uniqueIndex;not null" json:"booking_code"`
	PatientID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID     `gorm:"type:uuid;not null;index:idx_bookings_doctor_date" json:"doctor_id"`
	Date            calendar.Date `gorm:"not null;index:idx_bookings_doctor_date" json:"date"`
	TimeSlot        string        `gorm:"type:varchar(5);not null" json:"time_slot"`
	Status          BookingStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Specialty       string        `gorm:"type:varchar(100);not null" json:"specialty"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
	CancelReason    string        `gorm:"type:varchar(255)" json:"cancel_reason,omitempty"`
	RescheduledFrom *uuid.UUID    `gorm:"type:uuid" json:"rescheduled_from,omitempty"`
	CreatedAt       time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *User `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.BookingCode == "" {
		b.BookingCode = NewBookingCode(b.Date)
	}
	return nil
}

func (b *Booking) IsOwnedByPatient(userID uuid.UUID) bool {
	return b.PatientID == userID
}

func (b *Booking) IsOwnedByDoctor(userID uuid.UUID) bool {
	return b.DoctorID == userID
}

// BookingFields are the optional columns written alongside a status change.
type BookingFields struct {
	Notes        *string
	CancelReason *string
}

const bookingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewBookingCode returns a human-friendly code of the form BK-YYYYMMDD-XXXXXX.
func NewBookingCode(date calendar.Date) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("BK-%s-%s", date.Compact(), uuid.NewString()[:6])
	}
	for i := range buf {
		buf[i] = bookingCodeAlphabet[int(buf[i])%len(bookingCodeAlphabet)]
	}
	return fmt.Sprintf("BK-%s-%s", date.Compact(), buf)
}

// SpecialtyStatusCount is one row of the per-specialty status breakdown.
type SpecialtyStatusCount struct {
	Specialty string
	Status    BookingStatus
	Count     int64
}
