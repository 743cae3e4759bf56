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

// AdminHandler serves account administration and reporting.
type AdminHandler struct {
	authUsecase   usecase.AuthUsecase
	reportUsecase usecase.ReportUsecase
	validator     *validator.CustomValidator
}

func NewAdminHandler(authUsecase usecase.AuthUsecase, reportUsecase usecase.ReportUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		authUsecase:   authUsecase,
		reportUsecase: reportUsecase,
		validator:     validator,
	}
}

// UpdateUserStatus activates or deactivates an account
// @Summary Set user active flag
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserStatusRequest true "Status"
// @Success 200 {object} response.Response
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.UpdateUserStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.authUsecase.SetUserStatus(r.Context(), actor, userID, *req.IsActive)
	if err != nil {
		writeError(w, err, "Failed to update user status")
		return
	}

	response.Success(w, http.StatusOK, "User status updated successfully", user)
}

// BookingReport aggregates bookings per specialty for [from, to]
// @Summary Booking report
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param from query string true "YYYY-MM-DD"
// @Param to query string true "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Router /admin/reports/bookings [get]
func (h *AdminHandler) BookingReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := calendar.ParseDate(q.Get("from"))
	if err != nil {
		response.FromError(w, usecase.ErrInvalidDate)
		return
	}
	to, err := calendar.ParseDate(q.Get("to"))
	if err != nil {
		response.FromError(w, usecase.ErrInvalidDate)
		return
	}

	report, err := h.reportUsecase.BookingReport(r.Context(), from, to)
	if err != nil {
		writeError(w, err, "Failed to build report")
		return
	}

	response.Success(w, http.StatusOK, "Report generated successfully", report)
}
