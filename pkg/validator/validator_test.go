package validator

import "testing"

type bookingInput struct {
	DoctorID string   `validate:"required,uuid"`
	Date     string   `validate:"required,isodate"`
	TimeSlot string   `validate:"required,clock"`
	Slots    []string `validate:"unique,dive,clock"`
}

func TestValidate_CustomTags(t *testing.T) {
	v := NewValidator()

	ok := bookingInput{
		DoctorID: "6f1c2b1e-6d7a-4b0e-9d5c-0c2f3f6a8b11",
		Date:     "2024-07-01",
		TimeSlot: "08:00",
		Slots:    []string{"08:00", "09:30"},
	}
	if err := v.Validate(ok); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	bad := ok
	bad.Date = "2024-13-01"
	bad.TimeSlot = "8am"
	err := v.Validate(bad)
	if err == nil {
		t.Fatal("expected validation error")
	}
	fields := v.FormatValidationErrors(err)
	if fields["Date"] != "Date must be a date in YYYY-MM-DD format" {
		t.Errorf("unexpected Date message %q", fields["Date"])
	}
	if fields["TimeSlot"] != "TimeSlot must be a time in HH:MM format" {
		t.Errorf("unexpected TimeSlot message %q", fields["TimeSlot"])
	}
}

func TestValidate_DuplicateSlots(t *testing.T) {
	v := NewValidator()
	in := bookingInput{
		DoctorID: "6f1c2b1e-6d7a-4b0e-9d5c-0c2f3f6a8b11",
		Date:     "2024-07-01",
		TimeSlot: "08:00",
		Slots:    []string{"08:00", "08:00"},
	}
	err := v.Validate(in)
	if err == nil {
		t.Fatal("expected duplicate slots to be rejected")
	}
	if v.FormatValidationErrors(err)["Slots"] != "Slots must not contain duplicates" {
		t.Errorf("unexpected errors %v", v.FormatValidationErrors(err))
	}
}

func TestVar(t *testing.T) {
	v := NewValidator()
	if err := v.Var("23:59", "clock"); err != nil {
		t.Errorf("expected 23:59 to be valid: %v", err)
	}
	if err := v.Var("24:00", "clock"); err == nil {
		t.Error("expected 24:00 to be invalid")
	}
}
