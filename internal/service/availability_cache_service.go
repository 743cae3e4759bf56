package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medibook/pkg/calendar"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RedisAvailabilityKeyPrefix           = "availability:"
	RedisAvailabilityGenerationKeyPrefix = "availability_gen:"

	// per-date generations only need to outlive an in-flight resolve
	dateGenerationTTL = 24 * time.Hour
)

// setIfGenerationScript writes the cached slots only when neither the doctor nor the
// date generation moved since the reader sampled them.
var setIfGenerationScript = redis.NewScript(`
local doctorGen = redis.call("GET", KEYS[1]) or "0"
local dateGen = redis.call("GET", KEYS[2]) or "0"
if doctorGen ~= ARGV[1] or dateGen ~= ARGV[2] then
	return 0
end
redis.call("SET", KEYS[3], ARGV[3], "PX", ARGV[4])
return 1
`)

// AvailabilityVersion is the cache generation observed by Get. Set drops a write
// whose version was invalidated in the meantime.
type AvailabilityVersion struct {
	doctor string
	date   string
	valid  bool
}

// AvailabilityCache stores resolved free slots per (doctor, date).
type AvailabilityCache interface {
	// Get returns the cached slots and the version to pass to Set on a miss.
	Get(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]string, AvailabilityVersion, bool, error)
	// Set reports whether the slots were stored.
	Set(ctx context.Context, doctorID uuid.UUID, date calendar.Date, version AvailabilityVersion, slots []string) (bool, error)
	Invalidate(ctx context.Context, doctorID uuid.UUID, dates ...calendar.Date) error
	InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type RedisAvailabilityCache struct {
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

type cachedAvailability struct {
	Generation string   `json:"gen"`
	Slots      []string `json:"slots"`
}

func NewRedisAvailabilityCache(redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

func AvailabilityKey(doctorID uuid.UUID, date calendar.Date) string {
	return fmt.Sprintf("%s%s:%s", RedisAvailabilityKeyPrefix, doctorID, date)
}

func doctorGenerationKey(doctorID uuid.UUID) string {
	return RedisAvailabilityGenerationKeyPrefix + doctorID.String()
}

func dateGenerationKey(doctorID uuid.UUID, date calendar.Date) string {
	return fmt.Sprintf("%s%s:%s", RedisAvailabilityGenerationKeyPrefix, doctorID, date)
}

func (c *RedisAvailabilityCache) Get(ctx context.Context, doctorID uuid.UUID, date calendar.Date) ([]string, AvailabilityVersion, bool, error) {
	values, err := c.redisClient.MGet(ctx,
		doctorGenerationKey(doctorID),
		dateGenerationKey(doctorID, date),
		AvailabilityKey(doctorID, date),
	).Result()
	if err != nil {
		return nil, AvailabilityVersion{}, false, err
	}

	version := AvailabilityVersion{
		doctor: generationValue(values[0]),
		date:   generationValue(values[1]),
		valid:  true,
	}

	raw, ok := values[2].(string)
	if !ok {
		return nil, version, false, nil
	}

	var cached cachedAvailability
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil, version, false, fmt.Errorf("decode cached availability: %w", err)
	}
	// written before the doctor's template changed
	if cached.Generation != version.doctor {
		return nil, version, false, nil
	}
	if cached.Slots == nil {
		cached.Slots = []string{}
	}
	return cached.Slots, version, true, nil
}

func (c *RedisAvailabilityCache) Set(ctx context.Context, doctorID uuid.UUID, date calendar.Date, version AvailabilityVersion, slots []string) (bool, error) {
	if !version.valid {
		return false, nil
	}
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(cachedAvailability{Generation: version.doctor, Slots: slots})
	if err != nil {
		return false, err
	}

	stored, err := setIfGenerationScript.Run(ctx, c.redisClient,
		[]string{doctorGenerationKey(doctorID), dateGenerationKey(doctorID, date), AvailabilityKey(doctorID, date)},
		version.doctor, version.date, string(raw), c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Invalidate bumps the generation of each date and drops its cached value, so a
// resolve that read the store before this call cannot write its result back.
func (c *RedisAvailabilityCache) Invalidate(ctx context.Context, doctorID uuid.UUID, dates ...calendar.Date) error {
	if len(dates) == 0 {
		return nil
	}
	pipe := c.redisClient.TxPipeline()
	for _, d := range dates {
		genKey := dateGenerationKey(doctorID, d)
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, dateGenerationTTL)
		pipe.Del(ctx, AvailabilityKey(doctorID, d))
	}
	_, err := pipe.Exec(ctx)
	return err
}

// InvalidateDoctor retires every cached date of a doctor by bumping the doctor
// generation. Old values are ignored by Get and expire with their TTL.
func (c *RedisAvailabilityCache) InvalidateDoctor(ctx context.Context, doctorID uuid.UUID) error {
	gen, err := c.redisClient.Incr(ctx, doctorGenerationKey(doctorID)).Result()
	if err != nil {
		return err
	}
	c.log.Debugf("Availability generation for doctor %s is now %d", doctorID, gen)
	return nil
}

func generationValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "0"
}
