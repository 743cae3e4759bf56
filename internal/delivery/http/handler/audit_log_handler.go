package handler

import (
	"net/http"

	"medibook/internal/domain/entity"
	"medibook/internal/usecase"
	"medibook/pkg/response"

	"github.com/google/uuid"
)

// AuditLogHandler exposes the audit trail to administrators.
type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, ok := pathUUID(w, r, "id", "audit log")
	if !ok {
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		writeError(w, err, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

// GetAllAuditLogs lists entries newest first, optionally narrowed by ?user_id and ?action.
func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	filter := entity.AuditLogFilter{Action: r.URL.Query().Get("action")}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		filter.UserID = &userID
	}

	result, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, err, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", result.Logs, response.NewMeta(result.Page, result.Limit, result.Total))
}
