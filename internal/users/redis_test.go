package users

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStoreInsertAndFind(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)

	created, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, created.ID)
	assert.False(t, created.RegisteredAt.IsZero())

	byEmail, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Ann", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", byID.Email)

	got, err := mr.Get("user:email:ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestRedisStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	_, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = store.Insert(ctx, &User{Name: "Imposter", Email: "ann@x.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	second, err := store.Insert(ctx, &User{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, int64(1))

	u, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u.Name)
}

func TestRedisStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore(t)

	_, err := store.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByID(ctx, 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreConnectionError(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t)
	mr.Close()

	_, err := store.FindByID(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
