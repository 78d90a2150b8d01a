// internal/common/database/redis.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"onboarding-workers/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by GetJSON when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// SnapshotCacheKey is the key an application snapshot is cached under.
func SnapshotCacheKey(applicationID string) string {
	return "onboarding:snapshot:" + applicationID
}

// SnapshotVersionKey counts committed changes to an application. It has no
// expiry so that a reused counter value can never match a stale read.
func SnapshotVersionKey(applicationID string) string {
	return "onboarding:snapshot-version:" + applicationID
}

// RedisClient wraps the Redis client
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a new Redis client
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &RedisClient{Client: rdb}, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetJSON decodes the value stored at key into dst.
func (c *RedisClient) GetJSON(ctx context.Context, key string, dst interface{}) error {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetJSON stores value as JSON with the given expiration.
func (c *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, raw, expiration).Err()
}

// Del deletes one or more keys
func (c *RedisClient) Del(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// Version returns the counter stored at key, or 0 when it is not set.
func (c *RedisClient) Version(ctx context.Context, key string) (int64, error) {
	v, err := c.Client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Bump increments the version counter and deletes keys in one transaction.
func (c *RedisClient) Bump(ctx context.Context, versionKey string, keys ...string) error {
	_, err := c.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	return err
}

// SetJSONIfVersion stores value only while versionKey still holds version.
// It reports false without error when the version moved, either before the
// check or between the check and the write.
func (c *RedisClient) SetJSONIfVersion(ctx context.Context, key string, value interface{}, expiration time.Duration, versionKey string, version int64) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, expiration)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}
