package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AI2HU/dbconsole/internal/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache defines the key-value operations commands use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A ttl <= 0 keeps the entry until deleted.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured cache backend. Keys are prefixed with
// cfg.Prefix.
func Open(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	var (
		c   Cache
		err error
	)

	switch cfg.Driver {
	case "redis":
		c, err = NewRedis(ctx, cfg)
	case "bolt":
		c, err = NewBolt(cfg.Path, cfg.Timeout)
	case "mongodb":
		c, err = NewMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return WithPrefix(c, cfg.Prefix), nil
}

type prefixed struct {
	Cache
	prefix string
}

// WithPrefix namespaces every key of c.
func WithPrefix(c Cache, prefix string) Cache {
	if prefix == "" {
		return c
	}
	return &prefixed{Cache: c, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, error) {
	return p.Cache.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return p.Cache.Set(ctx, p.prefix+key, value, ttl)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.Cache.Delete(ctx, p.prefix+key)
}
