package entity

import (
	"regexp"
	"testing"

	"medibook/pkg/calendar"
)

func TestBookingStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingStatusScheduled, BookingStatusConfirmed, true},
		{BookingStatusScheduled, BookingStatusCompleted, true},
		{BookingStatusScheduled, BookingStatusCancelled, true},
		{BookingStatusScheduled, BookingStatusNoShow, true},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusConfirmed, false},
		{BookingStatusConfirmed, BookingStatusScheduled, false},
		{BookingStatusCancelled, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusCompleted, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusNoShow, BookingStatusConfirmed, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestBookingStatus_Classification(t *testing.T) {
	for _, s := range OccupyingStatuses {
		if !s.Occupies() || s.IsTerminal() {
			t.Errorf("%s should occupy and not be terminal", s)
		}
	}
	for _, s := range []BookingStatus{BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow} {
		if s.Occupies() || !s.IsTerminal() {
			t.Errorf("%s should be terminal and free its slot", s)
		}
	}
	if BookingStatus("pending").Valid() {
		t.Error("unknown status must be invalid")
	}
}

func TestSourcesFor(t *testing.T) {
	from := SourcesFor(BookingStatusConfirmed)
	if len(from) != 1 || from[0] != BookingStatusScheduled {
		t.Errorf("unexpected sources for confirmed: %v", from)
	}
	if len(SourcesFor(BookingStatusCancelled)) != 2 {
		t.Errorf("cancel should be reachable from both occupying statuses")
	}
	if len(SourcesFor(BookingStatusScheduled)) != 0 {
		t.Error("nothing transitions back to scheduled")
	}
}

func TestNewBookingCode(t *testing.T) {
	code := NewBookingCode(calendar.MustParseDate("2024-07-01"))
	if !regexp.MustCompile(`^BK-20240701-[A-Z2-9]{6}$`).MatchString(code) {
		t.Errorf("unexpected booking code %q", code)
	}
}

func TestSlotList(t *testing.T) {
	slots := SlotList{"08:00", "09:00", "10:00"}
	if err := slots.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (SlotList{"08:00", "08:00"}).Validate(); err == nil {
		t.Error("expected duplicate error")
	}
	if err := (SlotList{"8:00"}).Validate(); err == nil {
		t.Error("expected format error")
	}

	free := slots.Without(map[string]struct{}{"09:00": {}})
	if len(free) != 2 || free[0] != "08:00" || free[1] != "10:00" {
		t.Errorf("unexpected free slots %v", free)
	}

	v, err := slots.Value()
	if err != nil || v != `["08:00","09:00","10:00"]` {
		t.Errorf("unexpected value %v (%v)", v, err)
	}
	var scanned SlotList
	if err := scanned.Scan([]byte(`["11:00","12:00"]`)); err != nil || len(scanned) != 2 || scanned[0] != "11:00" {
		t.Errorf("unexpected scan %v (%v)", scanned, err)
	}
}
