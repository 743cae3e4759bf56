package usecase

import (
	"context"

	"medibook/internal/converter"
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, filter entity.AuditLogFilter, page, limit int) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id uuid.UUID) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, filter entity.AuditLogFilter, page, limit int) (*dto.AuditLogListResponse, error) {
	page, limit = normalizePage(page, limit)

	logs, total, err := u.auditLogRepo.FindAll(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id uuid.UUID) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log %s: %+v", id, err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
