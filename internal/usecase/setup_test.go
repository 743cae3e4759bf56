package usecase

import (
	"io"
	"testing"
	"time"

	"medibook/config"
	"medibook/internal/domain/entity"
	domainRepo "medibook/internal/domain/repository"
	"medibook/internal/repository"
	"medibook/internal/service"
	"medibook/internal/testutil"
	"medibook/pkg/apperror"
	"medibook/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	redis *miniredis.Miniredis
	log   *logrus.Logger

	userRepo         domainRepo.UserRepository
	bookingRepo      domainRepo.BookingRepository
	availabilityRepo domainRepo.AvailabilityRepository
	auditRepo        domainRepo.AuditLogRepository

	locker   *service.RedisSlotLocker
	cache    *service.RedisAvailabilityCache
	sessions *service.RedisSessionStore
	audit    service.AuditService
	jwt      *jwt.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	env := &testEnv{
		db:               db,
		redis:            mr,
		log:              log,
		userRepo:         repository.NewUserRepository(db),
		bookingRepo:      repository.NewBookingRepository(db),
		availabilityRepo: repository.NewAvailabilityRepository(db),
		auditRepo:        repository.NewAuditLogRepository(db),
		locker:           service.NewRedisSlotLocker(client, log, 5*time.Second),
		cache:            service.NewRedisAvailabilityCache(client, log, time.Minute),
		sessions:         service.NewRedisSessionStore(client),
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
		}),
	}
	env.audit = service.NewAuditService(log, env.auditRepo)
	t.Cleanup(env.locker.Stop)
	return env
}

func (e *testEnv) bookingUsecase() *bookingUsecase {
	return NewBookingUsecase(e.log, e.userRepo, e.bookingRepo, e.availabilityRepo, e.locker, e.cache, e.audit).(*bookingUsecase)
}

func (e *testEnv) availabilityUsecase() AvailabilityUsecase {
	return NewAvailabilityUsecase(e.log, e.userRepo, e.availabilityRepo, e.bookingRepo, e.cache, e.audit)
}

func (e *testEnv) authUsecase() AuthUsecase {
	return NewAuthUsecase(e.log, e.userRepo, e.sessions, e.jwt, e.audit)
}

func (e *testEnv) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := e.auditRepo.FindAll(t.Context(), entity.AuditLogFilter{}, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	actions := make([]string, len(logs))
	for i, l := range logs {
		actions[i] = l.Action
	}
	return actions
}

func actorOf(u *entity.User) entity.Actor {
	return entity.Actor{UserID: u.ID, Role: u.Role}
}

func assertKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	if got := apperror.KindOf(err); got != kind {
		t.Fatalf("expected %s error, got %s (%v)", kind, got, err)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
