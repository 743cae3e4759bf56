package repository

import (
	"context"

	"medibook/internal/domain/entity"
	"medibook/pkg/apperror"

	"github.com/google/uuid"
)

type UserRepository interface {
	// Create inserts the user together with any attached profile.
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	// Update saves the user row and its attached profile.
	Update(ctx context.Context, user *entity.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error)
	ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]entity.User, int64, error)
}

var (
	ErrEmailTaken   = apperror.Conflict("EMAIL_TAKEN", "email already registered")
	ErrLicenseTaken = apperror.Conflict("LICENSE_TAKEN", "license number already registered")
)
