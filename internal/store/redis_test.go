package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := OpenRedis(context.Background(), &redis.Options{Addr: mr.Addr()}, DefaultRedisPrefix)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r, mr
}

func TestRedis_MediumContract(t *testing.T) {
	r, _ := createTestRedis(t)
	runMediumContract(t, r)
}

func TestRedis_UsesPrefix(t *testing.T) {
	r, mr := createTestRedis(t)
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "technologies", []byte(`[]`)))

	assert.True(t, mr.Exists("techtrack:technologies"))
	assert.False(t, mr.Exists("technologies"))

	// Keys outside the prefix are invisible.
	require.NoError(t, mr.Set("other:technologies_backup_1", "[]"))
	keys, err := r.Keys(ctx, "technologies")
	require.NoError(t, err)
	assert.Equal(t, []string{"technologies"}, keys)
}

func TestOpenRedis_Unreachable(t *testing.T) {
	opts := &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: time.Second}
	_, err := OpenRedis(context.Background(), opts, DefaultRedisPrefix)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}
