package handler

import (
	"encoding/json"
	"net/http"

	"medibook/internal/delivery/dto"
	"medibook/internal/usecase"
	"medibook/pkg/response"
	"medibook/pkg/validator"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// BrowseDoctors is the public directory
// @Summary Browse active doctors
// @Tags Doctors
// @Produce json
// @Param specialty query string false "Specialty"
// @Param name query string false "Name contains"
// @Success 200 {object} response.Response
// @Router /doctors [get]
func (h *DoctorHandler) BrowseDoctors(w http.ResponseWriter, r *http.Request) {
	result, err := h.doctorUsecase.BrowseDoctors(r.Context(), listQuery(r))
	if err != nil {
		writeError(w, err, "Failed to get doctors")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Doctors retrieved successfully", result.Doctors, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *DoctorHandler) GetPublicDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetPublicDoctor(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.CreateDoctor(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err, "Failed to create doctor")
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		writeError(w, err, "Failed to get doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	result, err := h.doctorUsecase.ListDoctors(r.Context(), listQuery(r))
	if err != nil {
		writeError(w, err, "Failed to get doctors")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Doctors retrieved successfully", result.Doctors, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	doctorID, ok := pathUUID(w, r, "id", "doctor")
	if !ok {
		return
	}

	var req dto.UpdateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateDoctor(r.Context(), actor, doctorID, &req)
	if err != nil {
		writeError(w, err, "Failed to update doctor")
		return
	}

	response.Success(w, http.StatusOK, "Doctor updated successfully", doctor)
}

func listQuery(r *http.Request) dto.DoctorListQuery {
	page, limit := pageParams(r)
	q := r.URL.Query()
	return dto.DoctorListQuery{
		Specialty: q.Get("specialty"),
		Name:      q.Get("name"),
		Page:      page,
		Limit:     limit,
	}
}
