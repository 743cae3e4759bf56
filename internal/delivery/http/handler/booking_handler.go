package handler

import (
	"encoding/json"
	"net/http"

	"medibook/internal/delivery/dto"
	"medibook/internal/usecase"
	"medibook/pkg/calendar"
	"medibook/pkg/response"
	"medibook/pkg/validator"
)

type BookingHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewBookingHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// CreateBooking books a slot for the calling patient
// @Summary Create booking
// @Tags Bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Create Booking Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	// validated above
	date, _ := calendar.ParseDate(req.Date)

	booking, err := h.bookingUsecase.CreateBooking(r.Context(), actor.UserID, req.DoctorID, date, req.TimeSlot)
	if err != nil {
		writeError(w, err, "Failed to create booking")
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	bookings, err := h.bookingUsecase.ListMyBookings(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

// GetDoctorBookings lists the calling doctor's bookings, optionally for one date
func (h *BookingHandler) GetDoctorBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var date *calendar.Date
	if raw := r.URL.Query().Get("date"); raw != "" {
		d, err := calendar.ParseDate(raw)
		if err != nil {
			response.FromError(w, usecase.ErrInvalidDate)
			return
		}
		date = &d
	}

	bookings, err := h.bookingUsecase.ListDoctorBookings(r.Context(), actor.UserID, date)
	if err != nil {
		writeError(w, err, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.GetBooking(r.Context(), bookingID, actor)
	if err != nil {
		writeError(w, err, "Failed to get booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking retrieved successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	// reason is optional
	var req dto.CancelBookingRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if err := h.validator.Validate(&req); err != nil {
			response.ValidationError(w, h.validator.FormatValidationErrors(err))
			return
		}
	}

	booking, err := h.bookingUsecase.CancelBooking(r.Context(), bookingID, actor, req.Reason)
	if err != nil {
		writeError(w, err, "Failed to cancel booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	var req dto.RescheduleBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	date, _ := calendar.ParseDate(req.Date)

	booking, err := h.bookingUsecase.RescheduleBooking(r.Context(), bookingID, actor, date, req.TimeSlot)
	if err != nil {
		writeError(w, err, "Failed to reschedule booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking rescheduled successfully", booking)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.ConfirmBooking(r.Context(), bookingID, actor)
	if err != nil {
		writeError(w, err, "Failed to confirm booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking confirmed successfully", booking)
}

func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	var req dto.CompleteBookingRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if err := h.validator.Validate(&req); err != nil {
			response.ValidationError(w, h.validator.FormatValidationErrors(err))
			return
		}
	}

	booking, err := h.bookingUsecase.CompleteBooking(r.Context(), bookingID, actor, req.Notes)
	if err != nil {
		writeError(w, err, "Failed to complete booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking completed successfully", booking)
}

func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathUUID(w, r, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingUsecase.MarkNoShow(r.Context(), bookingID, actor)
	if err != nil {
		writeError(w, err, "Failed to mark booking as no-show")
		return
	}

	response.Success(w, http.StatusOK, "Booking marked as no-show", booking)
}
