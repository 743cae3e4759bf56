package repository

import (
	"context"

	"medibook/internal/domain/entity"

	"github.com/google/uuid"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, filter entity.AuditLogFilter, limit, offset int) ([]entity.AuditLog, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AuditLog, error)
}
