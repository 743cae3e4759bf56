package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"medibook/internal/delivery/dto"
	"medibook/internal/delivery/http/middleware"
	"medibook/internal/usecase"
	"medibook/pkg/response"
	"medibook/pkg/validator"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validator.CustomValidator
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, validator *validator.CustomValidator) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
	}
}

// RegisterPatient handles patient self-registration
// @Summary Register a new patient
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPatientRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) RegisterPatient(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterPatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	user, err := h.authUsecase.RegisterPatient(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to register user")
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", user)
}

// Login handles user login
// @Summary Login user
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, err, "Failed to login")
		return
	}

	response.Success(w, http.StatusOK, "Login successful", tokens)
}

// Logout revokes the current access token and the refresh token, when sent
// @Summary Logout user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	tokenID, ok := middleware.GetTokenIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// body is optional
	var req dto.LogoutRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	if err := h.authUsecase.Logout(r.Context(), userID, tokenID, req.RefreshToken); err != nil {
		h.writeAuthError(w, err, "Failed to logout")
		return
	}

	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh Token Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	tokens, err := h.authUsecase.RefreshToken(r.Context(), &req)
	if err != nil {
		h.writeAuthError(w, err, "Failed to refresh token")
		return
	}

	response.Success(w, http.StatusOK, "Token refreshed successfully", tokens)
}

// GetCurrentUser handles getting current user info
// @Summary Get current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err, "Failed to get user info")
		return
	}

	response.Success(w, http.StatusOK, "User retrieved successfully", user)
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, usecase.ErrAccountInactive):
		response.Forbidden(w, "Account is deactivated")
	case errors.Is(err, usecase.ErrInvalidToken), errors.Is(err, usecase.ErrTokenRevoked):
		response.Unauthorized(w, err.Error())
	default:
		writeError(w, err, fallback)
	}
}
