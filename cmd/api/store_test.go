package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/secrets-gate/internal/config"
	"github.com/yourusername/secrets-gate/internal/users"
)

func TestSetupStoreMemory(t *testing.T) {
	store, closeFn, err := setupStore(context.Background(), &config.Config{StoreDriver: config.StoreDriverMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, ok := store.(*users.MemoryStore)
	assert.True(t, ok)
}

func TestSetupStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{StoreDriver: config.StoreDriverRedis, RedisURL: "redis://" + mr.Addr() + "/0"}

	store, closeFn, err := setupStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, ok := store.(*users.RedisStore)
	require.True(t, ok)

	created, err := store.Insert(context.Background(), &users.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestSetupStoreRedisErrors(t *testing.T) {
	_, _, err := setupStore(context.Background(), &config.Config{StoreDriver: config.StoreDriverRedis, RedisURL: "::not a url"})
	assert.ErrorContains(t, err, "parse redis url")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err = setupStore(context.Background(), &config.Config{StoreDriver: config.StoreDriverRedis, RedisURL: "redis://" + addr})
	assert.ErrorContains(t, err, "connect to redis")
}

func TestSetupSessionStoreMemory(t *testing.T) {
	store, closeFn, err := setupSessionStore(&config.Config{StoreDriver: config.StoreDriverMemory, SessionSecret: "test-session-secret"})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, closeFn())
}

func TestSetupSessionStoreRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		StoreDriver:   config.StoreDriverRedis,
		RedisURL:      "redis://" + mr.Addr() + "/0",
		SessionSecret: "test-session-secret",
	}

	store, closeFn, err := setupSessionStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.NoError(t, closeFn())
}

func TestSetupSessionStoreRedisErrors(t *testing.T) {
	_, _, err := setupSessionStore(&config.Config{StoreDriver: config.StoreDriverRedis, RedisURL: "::not a url"})
	assert.ErrorContains(t, err, "parse redis url")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err = setupSessionStore(&config.Config{StoreDriver: config.StoreDriverRedis, RedisURL: "redis://" + addr})
	assert.ErrorContains(t, err, "redis session store")
}
