package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")

// Date is a calendar date without a time-of-day or location.
// All weekday arithmetic is done at the UTC day boundary.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range values such as 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current UTC date.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week of d on the proleptic Gregorian calendar.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compact returns YYYYMMDD, used in booking codes and keys.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType maps Date to a DATE column.
func (Date) GormDataType() string {
	return "date"
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Postgres returns time.Time for DATE columns, sqlite may return text.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", value)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		// sqlite may hand back a full timestamp for DATE columns
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = DateOf(t)
			return nil
		}
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
