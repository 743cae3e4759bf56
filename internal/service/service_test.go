package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"medibook/internal/domain/entity"
	"medibook/pkg/calendar"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSlotLocker_ContentionAndRelease(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisSlotLocker(client, quietLogger(), 5*time.Second)
	defer locker.Stop()

	ctx := context.Background()
	doctor := uuid.New()
	date := calendar.MustParseDate("2024-07-01")

	release, err := locker.Acquire(ctx, doctor, date, "09:00")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !mr.Exists(SlotLockKey(doctor, date, "09:00")) {
		t.Fatal("expected redis lock key")
	}

	if _, err := locker.Acquire(ctx, doctor, date, "09:00"); !errors.Is(err, ErrSlotLocked) {
		t.Fatalf("expected ErrSlotLocked, got %v", err)
	}

	// another slot is independent
	other, err := locker.Acquire(ctx, doctor, date, "10:00")
	if err != nil {
		t.Fatalf("acquire other slot: %v", err)
	}
	other()

	release()
	release()
	if mr.Exists(SlotLockKey(doctor, date, "09:00")) {
		t.Error("release must delete the redis key")
	}

	again, err := locker.Acquire(ctx, doctor, date, "09:00")
	if err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
	again()
}

func TestSlotLocker_HeldByAnotherProcess(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisSlotLocker(client, quietLogger(), 5*time.Second)
	defer locker.Stop()

	doctor := uuid.New()
	date := calendar.MustParseDate("2024-07-01")
	key := SlotLockKey(doctor, date, "09:00")
	mr.Set(key, "someone-else")

	if _, err := locker.Acquire(context.Background(), doctor, date, "09:00"); !errors.Is(err, ErrSlotLocked) {
		t.Fatalf("expected ErrSlotLocked, got %v", err)
	}

	// the foreign lock expires and the slot becomes available
	mr.Del(key)
	release, err := locker.Acquire(context.Background(), doctor, date, "09:00")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	// a lock taken over by someone else after expiry is not ours to delete
	mr.Set(key, "new-owner")
	release()
	if got, _ := mr.Get(key); got != "new-owner" {
		t.Errorf("release deleted a foreign lock, key now %q", got)
	}
}

func TestSlotLocker_DegradesWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	locker := NewRedisSlotLocker(client, quietLogger(), 5*time.Second)
	defer locker.Stop()
	mr.Close()

	doctor := uuid.New()
	date := calendar.MustParseDate("2024-07-01")

	release, err := locker.Acquire(context.Background(), doctor, date, "09:00")
	if err != nil {
		t.Fatalf("expected degraded acquire, got %v", err)
	}
	if _, err := locker.Acquire(context.Background(), doctor, date, "09:00"); !errors.Is(err, ErrSlotLocked) {
		t.Errorf("local lock must still serialize, got %v", err)
	}
	release()
}

func TestAvailabilityCache(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisAvailabilityCache(client, quietLogger(), time.Minute)
	ctx := context.Background()
	doctor := uuid.New()
	monday := calendar.MustParseDate("2024-07-01")
	tuesday := monday.AddDays(1)

	_, mondayVersion, ok, err := cache.Get(ctx, doctor, monday)
	if ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	_, tuesdayVersion, _, _ := cache.Get(ctx, doctor, tuesday)

	if stored, err := cache.Set(ctx, doctor, monday, mondayVersion, []string{"08:00", "09:00"}); !stored || err != nil {
		t.Fatalf("expected write, got stored=%v err=%v", stored, err)
	}
	if stored, err := cache.Set(ctx, doctor, tuesday, tuesdayVersion, nil); !stored || err != nil {
		t.Fatalf("expected write, got stored=%v err=%v", stored, err)
	}

	slots, _, ok, err := cache.Get(ctx, doctor, monday)
	if err != nil || !ok || len(slots) != 2 || slots[0] != "08:00" {
		t.Fatalf("unexpected cached value %v ok=%v err=%v", slots, ok, err)
	}
	empty, _, ok, _ := cache.Get(ctx, doctor, tuesday)
	if !ok || empty == nil || len(empty) != 0 {
		t.Errorf("an empty day must be cached as an empty list, got %v ok=%v", empty, ok)
	}

	if ttl := mr.TTL(AvailabilityKey(doctor, monday)); ttl != time.Minute {
		t.Errorf("expected ttl of one minute, got %v", ttl)
	}

	if err := cache.Invalidate(ctx, doctor, monday); err != nil {
		t.Fatal(err)
	}
	if _, _, ok, _ := cache.Get(ctx, doctor, monday); ok {
		t.Error("expected monday to be invalidated")
	}

	otherDoctor := uuid.New()
	_, otherVersion, _, _ := cache.Get(ctx, otherDoctor, monday)
	_, _ = cache.Set(ctx, otherDoctor, monday, otherVersion, []string{"12:00"})
	if err := cache.InvalidateDoctor(ctx, doctor); err != nil {
		t.Fatal(err)
	}
	if _, _, ok, _ := cache.Get(ctx, doctor, tuesday); ok {
		t.Error("expected every date of the doctor to be invalidated")
	}
	if _, _, ok, _ := cache.Get(ctx, otherDoctor, monday); !ok {
		t.Error("other doctors must keep their cache")
	}

	// a fresh read after the template change caches again
	_, version, _, _ := cache.Get(ctx, doctor, tuesday)
	if stored, _ := cache.Set(ctx, doctor, tuesday, version, []string{"10:00"}); !stored {
		t.Error("expected write with the current generation")
	}
	if slots, _, ok, _ := cache.Get(ctx, doctor, tuesday); !ok || len(slots) != 1 {
		t.Errorf("expected recached tuesday, got %v ok=%v", slots, ok)
	}
}

func TestAvailabilityCache_DropsWritesAfterInvalidation(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisAvailabilityCache(client, quietLogger(), time.Minute)
	ctx := context.Background()
	doctor := uuid.New()
	monday := calendar.MustParseDate("2024-07-01")

	tests := []struct {
		name       string
		invalidate func() error
	}{
		{"booking on the date", func() error { return cache.Invalidate(ctx, doctor, monday) }},
		{"template change", func() error { return cache.InvalidateDoctor(ctx, doctor) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, version, ok, err := cache.Get(ctx, doctor, monday)
			if ok || err != nil {
				t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
			}

			// the store changed after the resolver read it
			if err := tt.invalidate(); err != nil {
				t.Fatal(err)
			}

			stored, err := cache.Set(ctx, doctor, monday, version, []string{"08:00", "09:00"})
			if err != nil {
				t.Fatal(err)
			}
			if stored {
				t.Error("stale slots must not be written after invalidation")
			}
			if _, _, ok, _ := cache.Get(ctx, doctor, monday); ok {
				t.Error("expected a miss after the dropped write")
			}
		})
	}

	if stored, _ := cache.Set(ctx, doctor, monday, AvailabilityVersion{}, []string{"08:00"}); stored {
		t.Error("a version from a failed read must never be written")
	}
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisSessionStore(client)
	ctx := context.Background()
	user := uuid.New()

	if err := store.Store(ctx, user, "a1", time.Minute, "r1", time.Hour); err != nil {
		t.Fatal(err)
	}
	if members, _ := mr.Members(SessionIndexKey(user)); len(members) != 2 {
		t.Errorf("expected both token keys indexed, got %v", members)
	}
	if ok, err := store.IsAccessValid(ctx, user, "a1"); !ok || err != nil {
		t.Fatalf("expected valid access token, got %v %v", ok, err)
	}

	mr.FastForward(2 * time.Minute)
	if ok, _ := store.IsAccessValid(ctx, user, "a1"); ok {
		t.Error("access token must expire")
	}

	if ok, err := store.ConsumeRefresh(ctx, user, "r1"); !ok || err != nil {
		t.Fatalf("expected refresh token to be consumed, got %v %v", ok, err)
	}
	if ok, _ := store.ConsumeRefresh(ctx, user, "r1"); ok {
		t.Error("refresh token must be single use")
	}

	_ = store.Store(ctx, user, "a2", time.Minute, "r2", time.Hour)
	_ = store.Store(ctx, user, "a3", time.Minute, "r3", time.Hour)
	if err := store.Revoke(ctx, user, "a2", "r2"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.IsAccessValid(ctx, user, "a2"); ok {
		t.Error("revoked token must be invalid")
	}
	if ok, _ := store.IsAccessValid(ctx, user, "a3"); !ok {
		t.Error("other sessions must survive a single revoke")
	}

	other := uuid.New()
	_ = store.Store(ctx, other, "o1", time.Minute, "o2", time.Hour)

	if err := store.RevokeAll(ctx, user); err != nil {
		t.Fatal(err)
	}
	if ok, _ := store.IsAccessValid(ctx, user, "a3"); ok {
		t.Error("revoke all must drop remaining sessions")
	}
	if ok, _ := store.IsAccessValid(ctx, other, "o1"); !ok {
		t.Error("other users must keep their sessions")
	}
	for _, key := range mr.Keys() {
		if strings.Contains(key, user.String()) {
			t.Errorf("expected no session keys left for the user, found %s", key)
		}
	}
}

type recordingAuditRepo struct {
	logs []*entity.AuditLog
	err  error
}

func (r *recordingAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	return nil
}

func (r *recordingAuditRepo) FindAll(ctx context.Context, filter entity.AuditLogFilter, limit, offset int) ([]entity.AuditLog, int64, error) {
	return nil, 0, nil
}

func (r *recordingAuditRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.AuditLog, error) {
	return nil, nil
}

func TestAuditService(t *testing.T) {
	repo := &recordingAuditRepo{}
	svc := NewAuditService(quietLogger(), repo)
	actor := uuid.New()

	svc.LogUpdate(context.Background(), &actor, entity.AuditActionBookingCancel, "booking", "b-1", "scheduled", "cancelled")
	if len(repo.logs) != 1 {
		t.Fatalf("expected one audit log, got %d", len(repo.logs))
	}
	got := repo.logs[0]
	if got.Action != entity.AuditActionBookingCancel || got.Metadata["old_value"] != "scheduled" || got.Metadata["entity_id"] != "b-1" {
		t.Errorf("unexpected audit log %+v", got)
	}

	// a failing store must not panic or propagate
	repo.err = errors.New("store down")
	svc.LogEvent(context.Background(), &actor, entity.AuditActionUserLogin)
}
