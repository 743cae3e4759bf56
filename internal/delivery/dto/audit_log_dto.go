package dto

import (
	"time"

	"medibook/internal/domain/entity"

	"github.com/google/uuid"
)

// Response DTOs

type AuditLogResponse struct {
	ID        uuid.UUID   `json:"id"`
	UserID    *uuid.UUID  `json:"user_id,omitempty"`
	Action    string      `json:"action"`
	Metadata  entity.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
