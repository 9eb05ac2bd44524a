package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation(t *testing.T) {
	cfg := &Configuration{Timezone: "Africa/Abidjan"}
	assert.Equal(t, "Africa/Abidjan", cfg.Location().String())

	cfg.Timezone = "Mars/Olympus"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestConnectRedisDisabled(t *testing.T) {
	rdb, err := ConnectRedis(context.Background(), &Configuration{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := ConnectRedis(context.Background(), &Configuration{RedisAddr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { rdb.Close() })
}

func TestConnectRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb, err := ConnectRedis(ctx, &Configuration{RedisAddr: addr})
	assert.Nil(t, rdb)
	assert.ErrorContains(t, err, "redis ping")
}
