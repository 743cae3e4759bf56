package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"medibook/config"
	"medibook/internal/domain/entity"
	"medibook/internal/service"
	"medibook/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthenticate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	sessions := service.NewRedisSessionStore(client)
	m := NewAuthMiddleware(jwtService, sessions, log)

	userID := uuid.New()
	access, accessID, _ := jwtService.GenerateAccessToken(userID, "a@b.c", entity.RoleDoctor.String())
	refresh, refreshID, _ := jwtService.GenerateRefreshToken(userID, "a@b.c", entity.RoleDoctor.String())
	if err := sessions.Store(context.Background(), userID, accessID, time.Minute, refreshID, time.Hour); err != nil {
		t.Fatal(err)
	}
	unregistered, _, _ := jwtService.GenerateAccessToken(userID, "a@b.c", entity.RoleDoctor.String())

	var gotActor entity.Actor
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = GetActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"not in session store", "Bearer " + unregistered, http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}

	if gotActor.UserID != userID || gotActor.Role != entity.RoleDoctor {
		t.Errorf("unexpected actor in context %+v", gotActor)
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(entity.RoleAdmin, entity.RoleDoctor)(http.HandlerFunc(okHandler))

	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"admin", ContextWithUser(context.Background(), uuid.New(), "", entity.RoleAdmin, "t"), http.StatusOK},
		{"doctor", ContextWithUser(context.Background(), uuid.New(), "", entity.RoleDoctor, "t"), http.StatusOK},
		{"patient", ContextWithUser(context.Background(), uuid.New(), "", entity.RolePatient, "t"), http.StatusForbidden},
		{"anonymous", context.Background(), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequestLogger_PropagatesRequestID(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := RequestLogger(log)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request id to be echoed, got %q", got)
	}
}
