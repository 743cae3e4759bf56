package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"medibook/pkg/apperror"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestFromError_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperror.Validation("BAD", "bad input"), http.StatusBadRequest},
		{apperror.Forbidden("NOPE", "nope"), http.StatusForbidden},
		{apperror.NotFound("MISSING", "missing"), http.StatusNotFound},
		{apperror.Conflict("TAKEN", "taken"), http.StatusConflict},
		{fmt.Errorf("wrapped: %w", apperror.InvalidState("STATE", "bad state")), http.StatusConflict},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		FromError(rec, c.err)
		if rec.Code != c.status {
			t.Errorf("%v: expected status %d, got %d", c.err, c.status, rec.Code)
		}
		body := decode(t, rec)
		if body.Success {
			t.Errorf("%v: expected success=false", c.err)
		}
	}
}

func TestFromError_IncludesCode(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, apperror.Conflict("SLOT_TAKEN", "slot already taken"))

	body := decode(t, rec)
	if body.Message != "slot already taken" {
		t.Errorf("unexpected message %q", body.Message)
	}
	errBody, ok := body.Error.(map[string]interface{})
	if !ok || errBody["code"] != "SLOT_TAKEN" {
		t.Errorf("expected code SLOT_TAKEN, got %v", body.Error)
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 10, 25)
	if meta.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", meta.TotalPages)
	}
	if NewMeta(1, 0, 5).TotalPages != 0 {
		t.Error("zero limit should yield zero pages")
	}
}
