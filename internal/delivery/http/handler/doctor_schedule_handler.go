package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"medibook/internal/delivery/dto"
	"medibook/internal/usecase"
	"medibook/pkg/calendar"
	"medibook/pkg/response"
	"medibook/pkg/validator"

	"github.com/gorilla/mux"
)

const defaultRangeDays = 7

// DoctorScheduleHandler serves weekly templates and resolved availability.
type DoctorScheduleHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewDoctorScheduleHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *DoctorScheduleHandler {
	return &DoctorScheduleHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// GetAvailability lists the free slots of one date
// @Summary Resolve availability
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/availability [get]
func (h *DoctorScheduleHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}
	date, err := calendar.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		response.FromError(w, usecase.ErrInvalidDate)
		return
	}

	slots, err := h.availabilityUsecase.ResolveAvailability(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", dto.AvailabilityResponse{
		DoctorID:  doctorID,
		Date:      date.String(),
		DayOfWeek: date.Weekday().String(),
		Slots:     slots,
	})
}

// GetAvailabilityRange lists free slots for consecutive days, default a week from today
func (h *DoctorScheduleHandler) GetAvailabilityRange(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	q := r.URL.Query()
	from := calendar.Today()
	if raw := q.Get("from"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			response.FromError(w, usecase.ErrInvalidDate)
			return
		}
		from = d
	}
	days := defaultRangeDays
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.FromError(w, usecase.ErrInvalidRange.WithMessage("days must be a number"))
			return
		}
		days = n
	}

	result, err := h.availabilityUsecase.ResolveAvailabilityRange(r.Context(), doctorID, from, days)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", result)
}

func (h *DoctorScheduleHandler) GetWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	schedule, err := h.availabilityUsecase.GetWeeklyTemplate(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

// SetDaySchedule replaces the slots of one weekday
// @Summary Set weekday slots
// @Tags Doctors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param day path string true "Weekday name or 0-6"
// @Param request body dto.SetDayAvailabilityRequest true "Slots"
// @Success 200 {object} response.Response
// @Router /doctors/{id}/schedule/{day} [put]
func (h *DoctorScheduleHandler) SetDaySchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}
	day, ok := parseDay(mux.Vars(r)["day"])
	if !ok {
		response.FromError(w, usecase.ErrInvalidDay)
		return
	}

	var req dto.SetDayAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	schedule, err := h.availabilityUsecase.SetDayAvailability(r.Context(), actor, doctorID, day, req.Slots)
	if err != nil {
		writeError(w, err, "Failed to update schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule updated successfully", schedule)
}

// parseDay accepts a weekday name or its number, Sunday = 0.
func parseDay(s string) (time.Weekday, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(time.Sunday) || n > int(time.Saturday) {
			return 0, false
		}
		return time.Weekday(n), true
	}
	return calendar.ParseWeekday(s)
}
