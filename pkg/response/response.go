package response

import (
	"encoding/json"
	"math"
	"net/http"

	"medibook/pkg/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewMeta(page, limit int, total int64) *Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return &Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(w http.ResponseWriter, statusCode int, message string, data interface{}, meta *Meta) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   errors,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message, nil)
}

func Conflict(w http.ResponseWriter, message string, err interface{}) {
	if message == "" {
		message = "Conflict"
	}
	Error(w, http.StatusConflict, message, err)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict, apperror.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err using its kind and code. Errors outside the taxonomy become a bare 500.
func FromError(w http.ResponseWriter, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		InternalServerError(w, "")
		return
	}
	Error(w, StatusFor(appErr.Kind), appErr.Message, map[string]string{"code": appErr.Code})
}
