package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	RedisAccessTokenKeyPrefix  = "access_token:"
	RedisRefreshTokenKeyPrefix = "refresh_token:"
	RedisSessionIndexKeyPrefix = "sessions:"
)

// revokeAllScript deletes every token key listed in a user's session index and the
// index itself in one step, so a concurrent login is either revoked or kept whole.
var revokeAllScript = redis.NewScript(`
local keys = redis.call("SMEMBERS", KEYS[1])
for i = 1, #keys do
	redis.call("DEL", keys[i])
end
redis.call("DEL", KEYS[1])
return #keys
`)

// SessionStore tracks issued token ids. A token whose id is absent has been
// revoked or has expired.
type SessionStore interface {
	Store(ctx context.Context, userID uuid.UUID, accessID string, accessTTL time.Duration, refreshID string, refreshTTL time.Duration) error
	IsAccessValid(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	// ConsumeRefresh deletes the refresh token id and reports whether it existed.
	ConsumeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, accessID, refreshID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type RedisSessionStore struct {
	redisClient *redis.Client
}

func NewRedisSessionStore(redisClient *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{redisClient: redisClient}
}

func accessKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", RedisAccessTokenKeyPrefix, userID, tokenID)
}

func refreshKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s%s:%s", RedisRefreshTokenKeyPrefix, userID, tokenID)
}

// SessionIndexKey names the set of token keys issued to a user.
func SessionIndexKey(userID uuid.UUID) string {
	return RedisSessionIndexKeyPrefix + userID.String()
}

func (s *RedisSessionStore) Store(ctx context.Context, userID uuid.UUID, accessID string, accessTTL time.Duration, refreshID string, refreshTTL time.Duration) error {
	access, refresh := accessKey(userID, accessID), refreshKey(userID, refreshID)
	indexTTL := refreshTTL
	if accessTTL > indexTTL {
		indexTTL = accessTTL
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, access, "valid", accessTTL)
	pipe.Set(ctx, refresh, "valid", refreshTTL)
	pipe.SAdd(ctx, SessionIndexKey(userID), access, refresh)
	pipe.Expire(ctx, SessionIndexKey(userID), indexTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSessionStore) IsAccessValid(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, accessKey(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *RedisSessionStore) ConsumeRefresh(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	key := refreshKey(userID, tokenID)
	pipe := s.redisClient.TxPipeline()
	deleted := pipe.Del(ctx, key)
	pipe.SRem(ctx, SessionIndexKey(userID), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return deleted.Val() > 0, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, userID uuid.UUID, accessID, refreshID string) error {
	keys := []string{accessKey(userID, accessID)}
	if refreshID != "" {
		keys = append(keys, refreshKey(userID, refreshID))
	}
	pipe := s.redisClient.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.SRem(ctx, SessionIndexKey(userID), toMembers(keys)...)
	_, err := pipe.Exec(ctx)
	return err
}

// RevokeAll drops every session of a user, e.g. when an admin deactivates the account.
func (s *RedisSessionStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return revokeAllScript.Run(ctx, s.redisClient, []string{SessionIndexKey(userID)}).Err()
}

func toMembers(keys []string) []interface{} {
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	return members
}
