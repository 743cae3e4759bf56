package repository

import (
	"context"
	"errors"
	"strings"

	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return mapUserError(err)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("DoctorProfile").
		Preload("PatientProfile").
		Where(query, args...).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(user).Error
	return mapUserError(err)
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update("is_active", active)
	return result.RowsAffected, result.Error
}

// ListDoctors returns doctors joined with their profiles, ordered by name.
func (r *userRepository) ListDoctors(ctx context.Context, filter entity.DoctorFilter) ([]entity.User, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		query := db.Model(&entity.User{}).
			Joins("JOIN doctor_profiles ON doctor_profiles.user_id = users.id").
			Where("users.role = ?", entity.RoleDoctor)
		if filter.ActiveOnly {
			query = query.Where("users.is_active = ?", true)
		}
		if filter.Name != "" {
			query = query.Where("LOWER(users.full_name) LIKE ?", likePattern(filter.Name))
		}
		if filter.Specialization != "" {
			query = query.Where("LOWER(doctor_profiles.specialization) LIKE ?", likePattern(filter.Specialization))
		}
		return query
	}

	var total int64
	if err := r.db.WithContext(ctx).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.WithContext(ctx).Scopes(scope).
		Select("users.*").
		Preload("DoctorProfile").
		Order("users.full_name ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var users []entity.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func mapUserError(err error) error {
	switch {
	case err == nil:
		return nil
	case isDuplicateKeyError(err, "users_email", "users.email"):
		return domainRepo.ErrEmailTaken
	case isDuplicateKeyError(err, "license_number"):
		return domainRepo.ErrLicenseTaken
	default:
		return err
	}
}
