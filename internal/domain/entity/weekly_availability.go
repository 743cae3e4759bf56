package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeeklyAvailability is one day of a doctor's recurring weekly template.
// A day without a row, or with no slots, means the doctor does not attend.
type WeeklyAvailability struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:ux_availability_doctor_day" json:"doctor_id"`
	DayOfWeek time.Weekday `gorm:"not null;uniqueIndex:ux_availability_doctor_day" json:"day_of_week"`
	Slots     SlotList     `gorm:"type:jsonb;not null" json:"slots"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WeeklyAvailability) TableName() string {
	return "weekly_availabilities"
}

func (w *WeeklyAvailability) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// SlotList is an ordered list of HH:MM strings stored as a JSON array.
type SlotList []string

// Validate checks that every slot is a valid HH:MM and appears once.
func (s SlotList) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for _, slot := range s {
		if !calendar.IsClock(slot) {
			return fmt.Errorf("invalid slot %q", slot)
		}
		if _, dup := seen[slot]; dup {
			return fmt.Errorf("duplicate slot %q", slot)
		}
		seen[slot] = struct{}{}
	}
	return nil
}

func (s SlotList) Contains(slot string) bool {
	for _, v := range s {
		if v == slot {
			return true
		}
	}
	return false
}

// Without returns the slots not present in taken, preserving order.
func (s SlotList) Without(taken map[string]struct{}) []string {
	free := make([]string, 0, len(s))
	for _, slot := range s {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

func (s SlotList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SlotList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SlotList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SlotList", value)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// DayAvailability is the resolved set of free slots on one date.
type DayAvailability struct {
	Date  calendar.Date
	Slots []string
}
