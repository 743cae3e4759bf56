package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotLocked is returned when another request is already booking the same slot.
var ErrSlotLocked = errors.New("slot is being booked by another request")

// releaseLockScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseLockScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotLockKeyPrefix = "booking:lock:"

	redisLockTimeout = 2 * time.Second

	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// SlotLocker serializes booking attempts for one (doctor, date, slot).
type SlotLocker interface {
	// Acquire returns ErrSlotLocked on contention. The returned release func is
	// always safe to call once.
	Acquire(ctx context.Context, doctorID uuid.UUID, date calendar.Date, slot string) (release func(), err error)
	Stop()
}

// RedisSlotLocker takes an in-process mutex first and then a Redis SET NX lock.
// If Redis is unreachable the local lock alone is held and the store's unique
// index remains the guard across processes.
//
// Lock Ordering:
// 1. Local slot mutex (TryLock, never blocks)
// 2. Redis key
type RedisSlotLocker struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration

	slotMu sync.Map // map[string]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewRedisSlotLocker starts a background goroutine that drops idle mutexes.
// Call Stop() during graceful shutdown.
func NewRedisSlotLocker(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisSlotLocker {
	l := &RedisSlotLocker{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
		stopChan:    make(chan struct{}),
	}

	l.wg.Add(1)
	go l.cleanupMutexMapLoop()

	return l
}

// Stop is safe to call multiple times.
func (l *RedisSlotLocker) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		close(l.stopChan)
		l.wg.Wait()
		l.log.Info("Slot locker stopped")
	}
}

func SlotLockKey(doctorID uuid.UUID, date calendar.Date, slot string) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisSlotLockKeyPrefix, doctorID, date, slot)
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, doctorID uuid.UUID, date calendar.Date, slot string) (func(), error) {
	key := SlotLockKey(doctorID, date, slot)

	mt := l.getSlotMutex(key)
	if !mt.mu.TryLock() {
		return nil, ErrSlotLocked
	}

	var once sync.Once
	unlockLocal := func() { once.Do(mt.mu.Unlock) }

	token := uuid.NewString()
	redisCtx, cancel := context.WithTimeout(ctx, redisLockTimeout)
	defer cancel()

	ok, err := l.redisClient.SetNX(redisCtx, key, token, l.ttl).Result()
	if err != nil {
		l.log.Warnf("Redis slot lock unavailable for %s, relying on store constraint: %+v", key, err)
		return unlockLocal, nil
	}
	if !ok {
		unlockLocal()
		return nil, ErrSlotLocked
	}

	var released sync.Once
	return func() {
		released.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), redisLockTimeout)
			defer cancel()
			if err := releaseLockScript.Run(releaseCtx, l.redisClient, []string{key}, token).Err(); err != nil {
				l.log.Warnf("Failed to release slot lock %s: %+v", key, err)
			}
			unlockLocal()
		})
	}, nil
}

// getSlotMutex returns the mutex for a lock key
func (l *RedisSlotLocker) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := l.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (l *RedisSlotLocker) cleanupMutexMapLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			l.log.Debug("Mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			l.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes. lastUsed is checked under the
// lock so a concurrent getSlotMutex cannot be lost.
func (l *RedisSlotLocker) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	l.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				l.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		l.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}
