package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AI2HU/dbconsole/internal/config"
	"github.com/AI2HU/dbconsole/internal/logger"
)

// Redis implements Cache on a Redis server
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and pings it within cfg.Timeout
func NewRedis(ctx context.Context, cfg config.CacheConfig) (*Redis, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.Index,
		DialTimeout: cfg.Timeout,
	})

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.Debug("Cache connection established (redis, %s, db %d)", addr, cfg.Index)
	return &Redis{client: client}, nil
}

// Get returns the value stored at key, or ErrMiss when Redis has none
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

// Set stores value at key; a non-positive ttl keeps it until deleted
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes key; deleting a missing key is not an error
func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}
