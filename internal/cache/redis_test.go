package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// closedAddress returns a loopback address nothing is listening on.
func closedAddress(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func newUnreachableRedis(t *testing.T) *RedisCache {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        closedAddress(t),
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	rc := NewRedisCacheFromClient(client)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx := context.Background()
	rc := newUnreachableRedis(t)

	val, hit, err := rc.Get(ctx, "mortgage:result:key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get mortgage:result:key")
	assert.False(t, hit)
	assert.Nil(t, val)

	err = rc.Set(ctx, "mortgage:result:key", []byte("{}"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set mortgage:result:key")

	err = rc.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestResultStoreWithUnreachableRedis(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := NewResultStore(newUnreachableRedis(t), "", time.Minute, zap.New(core))
	scenario := mortgage.DefaultScenario()

	result, hit := store.Calculate(context.Background(), nil, scenario)

	assert.False(t, hit)
	assert.Equal(t, mortgage.Calculate(scenario), result)
	assert.Equal(t, 2, logs.Len())
}
