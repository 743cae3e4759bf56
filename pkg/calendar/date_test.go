package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year != 2024 || d.Month != time.July || d.Day != 1 {
		t.Errorf("unexpected date %+v", d)
	}
	if d.String() != "2024-07-01" {
		t.Errorf("expected 2024-07-01, got %s", d.String())
	}

	for _, bad := range []string{"", "2024-7-1", "2024-02-30", "01/07/2024", "2024-07-01T10:00:00Z"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestDate_WeekdayUsesUTCBoundary(t *testing.T) {
	// 2024-07-01 is a Monday regardless of the process timezone.
	loc := time.FixedZone("UTC+14", 14*60*60)
	t1 := time.Date(2024, time.July, 1, 23, 30, 0, 0, loc)
	d := DateOf(t1)
	if d.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", d.Weekday())
	}

	if MustParseDate("2024-06-30").Weekday() != time.Sunday {
		t.Error("expected 2024-06-30 to be a Sunday")
	}
	if MustParseDate("1900-01-01").Weekday() != time.Monday {
		t.Error("expected 1900-01-01 to be a Monday")
	}
}

func TestDate_AddDaysAndCompare(t *testing.T) {
	d := MustParseDate("2024-02-28")
	next := d.AddDays(1)
	if next.String() != "2024-02-29" {
		t.Errorf("expected leap day, got %s", next)
	}
	if !d.Before(next) || !next.After(d) {
		t.Error("ordering is wrong")
	}
	if d.AddDays(2).Compact() != "20240301" {
		t.Errorf("unexpected compact form %s", d.AddDays(2).Compact())
	}
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date":"2024-07-01"}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, _ := json.Marshal(payload)
	if string(out) != `{"date":"2024-07-01"}` {
		t.Errorf("unexpected json %s", out)
	}
	if err := json.Unmarshal([]byte(`{"date":"tomorrow"}`), &payload); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-07-01" {
		t.Errorf("scan time.Time: %v %s", err, d)
	}
	if err := d.Scan("2024-07-02"); err != nil || d.String() != "2024-07-02" {
		t.Errorf("scan string: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-07-03 00:00:00+00:00")); err != nil || d.String() != "2024-07-03" {
		t.Errorf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
	v, _ := MustParseDate("2024-07-04").Value()
	if v != "2024-07-04" {
		t.Errorf("unexpected driver value %v", v)
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]int{"00:00": 0, "08:00": 480, "23:59": 1439, "12:30": 750}
	for in, want := range cases {
		got, err := ParseClock(in)
		if err != nil || got != want {
			t.Errorf("ParseClock(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"8:00", "24:00", "12:60", "0800", "", "08:00:00", "ab:cd"} {
		if IsClock(bad) {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	if d, ok := ParseWeekday("Monday"); !ok || d != time.Monday {
		t.Error("expected Monday")
	}
	if d, ok := ParseWeekday("sun"); !ok || d != time.Sunday {
		t.Error("expected Sunday")
	}
	if _, ok := ParseWeekday("funday"); ok {
		t.Error("expected failure")
	}
}
