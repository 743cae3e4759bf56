package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var errSlotTaken = Conflict("SLOT_TAKEN", "slot already taken")

func TestError_IsMatchesByCode(t *testing.T) {
	wrapped := errSlotTaken.Wrap(errors.New("duplicate key"))
	if !errors.Is(wrapped, errSlotTaken) {
		t.Error("expected wrapped copy to match sentinel")
	}

	outer := fmt.Errorf("create booking: %w", wrapped)
	if !errors.Is(outer, errSlotTaken) {
		t.Error("expected match through fmt wrapping")
	}

	other := Conflict("OTHER", "other conflict")
	if errors.Is(other, errSlotTaken) {
		t.Error("different codes must not match")
	}
}

func TestError_Message(t *testing.T) {
	if errSlotTaken.Error() != "SLOT_TAKEN: slot already taken" {
		t.Errorf("unexpected message %q", errSlotTaken.Error())
	}
	cause := errors.New("boom")
	wrapped := errSlotTaken.Wrap(cause)
	if wrapped.Error() != "SLOT_TAKEN: slot already taken: boom" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected cause in chain")
	}
	if errSlotTaken.Err != nil {
		t.Error("Wrap must not mutate the sentinel")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{NotFound("X", "x"), KindNotFound},
		{fmt.Errorf("ctx: %w", Forbidden("X", "x")), KindForbidden},
		{InvalidState("X", "x"), KindInvalidState},
		{Validation("X", "x").WithMessage("y"), KindValidation},
		{errors.New("plain"), KindInternal},
	}
	for _, c := range cases {
		if got := KindOf(c.err); got != c.want {
			t.Errorf("KindOf(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}
