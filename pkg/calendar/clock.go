package calendar

import (
	"errors"
	"strings"
	"time"
)

// ClockLayout is the 24-hour time-of-day format of a slot.
const ClockLayout = "15:04"

var ErrInvalidClock = errors.New("invalid time format, use HH:MM")

// ParseClock validates a strict two-digit HH:MM string and returns the minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, ErrInvalidClock
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, ErrInvalidClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsClock reports whether s is a valid HH:MM slot string.
func IsClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

// ParseWeekday accepts English day names in any case ("monday", "Mon").
func ParseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) == 3 && strings.HasPrefix(name, s)) {
			return d, true
		}
	}
	return 0, false
}
