package service

import (
	"context"

	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditService records who did what. A failed write is logged and swallowed:
// auditing never fails the request that triggered it.
type AuditService interface {
	LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{})
	LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{})
	LogEvent(ctx context.Context, userID *uuid.UUID, action string)
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) {
	s.write(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) {
	s.write(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogEvent logs an action without an entity payload (login, logout).
func (s *auditService) LogEvent(ctx context.Context, userID *uuid.UUID, action string) {
	s.write(ctx, userID, action, nil)
}

func (s *auditService) write(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	// detached so a cancelled request still leaves its trail
	if err := s.auditRepo.Create(context.WithoutCancel(ctx), auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}
