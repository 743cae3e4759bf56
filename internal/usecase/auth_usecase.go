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
	"medibook/pkg/calendar"
	"medibook/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	SetUserStatus(ctx context.Context, actor entity.Actor, userID uuid.UUID, active bool) (*dto.UserResponse, error)
	CreateAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, error)
}

type authUsecase struct {
	log          *logrus.Logger
	userRepo     repository.UserRepository
	sessions     service.SessionStore
	jwtService   *jwt.JWTService
	auditService service.AuditService
}

func NewAuthUsecase(
	log *logrus.Logger,
	userRepo repository.UserRepository,
	sessions service.SessionStore,
	jwtService *jwt.JWTService,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		log:          log,
		userRepo:     userRepo,
		sessions:     sessions,
		jwtService:   jwtService,
		auditService: auditService,
	}
}

func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	dob, err := calendar.ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, ErrInvalidDate
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	// User and profile are inserted together
	user := &entity.User{
		Role:     entity.RolePatient,
		Email:    strings.ToLower(req.Email),
		Password: string(hashedPassword),
		FullName: req.FullName,
		IsActive: entity.BoolPtr(true),
		PatientProfile: &entity.PatientProfile{
			PhoneNumber: req.PhoneNumber,
			DateOfBirth: dob,
			Gender:      req.Gender,
			Address:     req.Address,
		},
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]string{"email": user.Email, "role": user.Role.String()})
	return converter.UserToResponse(user), nil
}

// CreateAdmin bootstraps an admin account from the command line.
func (u *authUsecase) CreateAdmin(ctx context.Context, email, password, fullName string) (*dto.UserResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Role:     entity.RoleAdmin,
		Email:    strings.ToLower(email),
		Password: string(hashedPassword),
		FullName: fullName,
		IsActive: entity.BoolPtr(true),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		u.log.Warnf("Failed to create admin: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, nil, entity.AuditActionUserRegister, "user", user.ID.String(), map[string]string{"email": user.Email, "role": user.Role.String()})
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active() {
		return nil, ErrAccountInactive
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email, user.Role.String())
	if err != nil {
		return nil, err
	}

	u.auditService.LogEvent(ctx, &user.ID, entity.AuditActionUserLogin)
	return tokens, nil
}

// Logout revokes the current access token and, when given, its refresh token.
func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshToken string) error {
	refreshTokenID := ""
	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
			return ErrInvalidToken
		}
		refreshTokenID = claims.TokenID
	}

	if err := u.sessions.Revoke(ctx, userID, accessTokenID, refreshTokenID); err != nil {
		u.log.Warnf("Failed to revoke tokens: %+v", err)
		return err
	}

	u.auditService.LogEvent(ctx, &userID, entity.AuditActionUserLogout)
	return nil
}

// RefreshToken rotates the pair: the presented refresh token is consumed.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	existed, err := u.sessions.ConsumeRefresh(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to consume refresh token: %+v", err)
		return nil, err
	}
	if !existed {
		return nil, ErrTokenRevoked
	}

	// role and active flag may have changed since the token was issued
	user, err := u.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.Active() {
		return nil, ErrAccountInactive
	}

	return u.issueTokens(ctx, user.ID, user.Email, user.Role.String())
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email, role string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email, role)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.sessions.Store(ctx, userID, accessTokenID, u.jwtService.GetAccessExpiry(), refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store tokens in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

// SetUserStatus activates or deactivates any account. Deactivation revokes
// every open session of the user.
func (u *authUsecase) SetUserStatus(ctx context.Context, actor entity.Actor, userID uuid.UUID, active bool) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	wasActive := user.Active()
	if _, err := u.userRepo.SetActive(ctx, userID, active); err != nil {
		u.log.Warnf("Failed to set status of user %s: %+v", userID, err)
		return nil, err
	}
	user.IsActive = entity.BoolPtr(active)

	if !active {
		if err := u.sessions.RevokeAll(ctx, userID); err != nil {
			u.log.Warnf("Failed to revoke sessions of user %s: %+v", userID, err)
		}
	}

	u.auditService.LogUpdate(ctx, &actor.UserID, entity.AuditActionUserStatus, "user", userID.String(),
		map[string]bool{"is_active": wasActive},
		map[string]bool{"is_active": active},
	)
	u.log.Infof("User %s active=%v (by %s)", userID, active, actor.UserID)
	return converter.UserToResponse(user), nil
}
