package cache

import (
	"context"
	"fmt"
	"time"

	"medibook/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to the redis backing sessions, slot locks and the
// availability cache.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Infof("Successfully connected to Redis at %s:%s", cfg.Host, cfg.Port)

	return client, nil
}
