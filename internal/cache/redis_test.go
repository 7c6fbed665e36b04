package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/dbconsole/internal/config"
)

func redisConfig(t *testing.T, s *miniredis.Miniredis) config.CacheConfig {
	t.Helper()

	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	cfg := config.DefaultConfig().Cache
	cfg.Host = s.Host()
	cfg.Port = port
	cfg.Timeout = time.Second
	return cfg
}

func setupRedis(t *testing.T, index int) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	s.RequireAuth("s3cret")

	cfg := redisConfig(t, s)
	cfg.Password = "s3cret"
	cfg.Index = index

	r, err := NewRedis(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Logf("failed to close redis: %v", err)
		}
	})
	return r, s
}

func TestRedis_SetGetDelete(t *testing.T) {
	r, _ := setupRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, r.Ping(ctx))

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Set(ctx, "k", "v1", 0))
	require.NoError(t, r.Set(ctx, "k", "v2", 0))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, r.Delete(ctx, "k"))
	_, err = r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, r.Delete(ctx, "never-set"))
}

func TestRedis_Expiry(t *testing.T) {
	r, s := setupRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "short", "v", time.Minute))
	require.NoError(t, r.Set(ctx, "forever", "v", -time.Second))
	assert.Equal(t, time.Minute, s.TTL("short"))
	assert.Zero(t, s.TTL("forever"))

	s.FastForward(30 * time.Second)
	v, err := r.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	s.FastForward(30 * time.Second)
	_, err = r.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)

	v, err = r.Get(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestRedis_SelectsIndex(t *testing.T) {
	r, s := setupRedis(t, 2)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", "v", 0))

	v, err := s.DB(2).Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
	assert.False(t, s.Exists("k"))
}

func TestNewRedisFailures(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("s3cret")

	cfg := redisConfig(t, s)
	cfg.Password = "wrong"
	_, err := NewRedis(context.Background(), cfg)
	assert.Error(t, err)

	s.Close()
	cfg.Password = "s3cret"
	_, err = NewRedis(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOpenRedisWithPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	ctx := context.Background()

	c, err := Open(ctx, redisConfig(t, s))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "user:alice", "{}", time.Minute))
	v, err := s.Get("dbconsole:user:alice")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}
