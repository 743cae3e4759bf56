package usecase

import (
	"context"
	"errors"
	"testing"

	"medibook/internal/delivery/dto"
	"medibook/internal/domain/entity"
	"medibook/internal/testutil"
	"medibook/pkg/jwt"
)

func registerAndLogin(t *testing.T, env *testEnv, email string) (*dto.UserResponse, *dto.TokenResponse) {
	t.Helper()
	uc := env.authUsecase()
	ctx := context.Background()

	user, err := uc.RegisterPatient(ctx, &dto.RegisterPatientRequest{
		Email:       email,
		Password:    "secret123",
		FullName:    "Jane Patient",
		DateOfBirth: "1990-05-17",
		Gender:      entity.GenderFemale,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tokens, err := uc.Login(ctx, &dto.LoginRequest{Email: email, Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return user, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	uc := env.authUsecase()
	ctx := context.Background()

	user, tokens := registerAndLogin(t, env, "Jane@Example.com")
	if user.Role != string(entity.RolePatient) || user.Email != "jane@example.com" || user.PatientProfile == nil {
		t.Errorf("unexpected user %+v", user)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.ExpiresIn != 900 {
		t.Errorf("unexpected tokens %+v", tokens)
	}

	claims, err := env.jwt.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != string(entity.RolePatient) || claims.TokenType != jwt.AccessToken {
		t.Errorf("unexpected claims %+v", claims)
	}
	valid, err := env.sessions.IsAccessValid(ctx, claims.UserID, claims.TokenID)
	if err != nil || !valid {
		t.Errorf("expected access token to be registered, got %v (%v)", valid, err)
	}

	_, err = uc.RegisterPatient(ctx, &dto.RegisterPatientRequest{
		Email: "jane@example.com", Password: "secret123", FullName: "Dup", DateOfBirth: "1990-01-01", Gender: "F",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	actions := env.auditActions(t)
	if !contains(actions, entity.AuditActionUserRegister) || !contains(actions, entity.AuditActionUserLogin) {
		t.Errorf("expected register and login audit entries, got %v", actions)
	}
}

func TestRefreshToken_RotatesAndIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	uc := env.authUsecase()
	ctx := context.Background()

	_, tokens := registerAndLogin(t, env, "rot@example.com")

	next, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == tokens.RefreshToken {
		t.Error("expected a new refresh token")
	}

	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("expected ErrTokenRevoked on reuse, got %v", err)
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: next.AccessToken}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token must not refresh, got %v", err)
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "garbage"}); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	uc := env.authUsecase()
	ctx := context.Background()

	user, tokens := registerAndLogin(t, env, "out@example.com")
	access, _ := env.jwt.ValidateToken(tokens.AccessToken)

	if err := uc.Logout(ctx, user.ID, access.TokenID, tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if valid, _ := env.sessions.IsAccessValid(ctx, user.ID, access.TokenID); valid {
		t.Error("access token should be revoked")
	}
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("refresh token should be revoked, got %v", err)
	}

	// someone else's refresh token is rejected
	_, otherTokens := registerAndLogin(t, env, "other@example.com")
	if err := uc.Logout(ctx, user.ID, "x", otherTokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestSetUserStatus(t *testing.T) {
	env := newTestEnv(t)
	uc := env.authUsecase()
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, env.db)
	user, tokens := registerAndLogin(t, env, "status@example.com")
	access, _ := env.jwt.ValidateToken(tokens.AccessToken)

	resp, err := uc.SetUserStatus(ctx, actorOf(admin), user.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.IsActive {
		t.Error("expected inactive user")
	}
	if valid, _ := env.sessions.IsAccessValid(ctx, user.ID, access.TokenID); valid {
		t.Error("deactivation must revoke sessions")
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "status@example.com", Password: "secret123"}); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}

	if _, err := uc.SetUserStatus(ctx, actorOf(admin), user.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Login(ctx, &dto.LoginRequest{Email: "status@example.com", Password: "secret123"}); err != nil {
		t.Errorf("reactivated user should log in, got %v", err)
	}

	if !contains(env.auditActions(t), entity.AuditActionUserStatus) {
		t.Error("expected user.status audit entry")
	}
}

func TestCreateAdmin(t *testing.T) {
	env := newTestEnv(t)
	uc := env.authUsecase()
	ctx := context.Background()

	admin, err := uc.CreateAdmin(ctx, "Root@Example.com", "supersecret", "Root")
	if err != nil {
		t.Fatal(err)
	}
	if admin.Role != string(entity.RoleAdmin) {
		t.Errorf("expected admin role, got %s", admin.Role)
	}
	if _, err := uc.CreateAdmin(ctx, "root@example.com", "supersecret", "Root"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}
