package usecase

import (
	"context"
	"errors"
	"strings"

	"medibook/internal/converter"
	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/domain/repository"
	"medibook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context, query dto.DoctorListQuery) (*dto.DoctorListResponse, error)
	// BrowseDoctors is the public directory: active doctors only, no contact details.
	BrowseDoctors(ctx context.Context, query dto.DoctorListQuery) (*dto.DoctorListResponse, error)
	GetPublicDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
}

type doctorUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewDoctorUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		log:          log,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

func (u *doctorUsecase) CreateDoctor(ctx context.Context, actor entity.Actor, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	// Create user with doctor profile in single insert using GORM association
	user := &entity.User{
		Role:     entity.RoleDoctor,
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
		FullName: req.FullName,
		IsActive: entity.BoolPtr(true),
		DoctorProfile: &entity.DoctorProfile{
			LicenseNumber:  req.LicenseNumber,
			Specialization: req.Specialization,
			Biography:      req.Biography,
		},
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrLicenseTaken) {
			return nil, err
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	response := converter.DoctorToResponse(user)
	u.auditService.LogCreate(ctx, &actor.UserID, entity.AuditActionDoctorCreate, "doctor", user.ID.String(), response)
	return response, nil
}

// UpdateDoctor changes profile fields. A new specialization affects future
// bookings only; existing bookings keep their snapshot.
func (u *doctorUsecase) UpdateDoctor(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	user, err := findDoctor(ctx, u.log, u.userRepo, doctorID, false)
	if err != nil {
		return nil, err
	}
	if user.DoctorProfile == nil {
		user.DoctorProfile = &entity.DoctorProfile{UserID: user.ID}
	}
	oldValue := converter.DoctorToResponse(user)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.LicenseNumber != nil {
		user.DoctorProfile.LicenseNumber = *req.LicenseNumber
	}
	if req.Specialization != nil {
		user.DoctorProfile.Specialization = *req.Specialization
	}
	if req.Biography != nil {
		user.DoctorProfile.Biography = *req.Biography
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, ErrLicenseTaken) {
			return nil, err
		}
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, err
	}

	response := converter.DoctorToResponse(user)
	u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionDoctorUpdate, "doctor", doctorID.String(), oldValue, response)
	return response, nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	user, err := findDoctor(ctx, u.log, u.userRepo, doctorID, false)
	if err != nil {
		return nil, err
	}
	return converter.DoctorToResponse(user), nil
}

func (u *doctorUsecase) GetPublicDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	user, err := findDoctor(ctx, u.log, u.userRepo, doctorID, true)
	if err != nil {
		return nil, err
	}
	return converter.PublicDoctorToResponse(user), nil
}

func (u *doctorUsecase) ListDoctors(ctx context.Context, query dto.DoctorListQuery) (*dto.DoctorListResponse, error) {
	return u.list(ctx, query, false)
}

func (u *doctorUsecase) BrowseDoctors(ctx context.Context, query dto.DoctorListQuery) (*dto.DoctorListResponse, error) {
	return u.list(ctx, query, true)
}

func (u *doctorUsecase) list(ctx context.Context, query dto.DoctorListQuery, public bool) (*dto.DoctorListResponse, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	doctors, total, err := u.userRepo.ListDoctors(ctx, entity.DoctorFilter{
		Specialization: query.Specialty,
		Name:           query.Name,
		ActiveOnly:     public,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors, public),
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
