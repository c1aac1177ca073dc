package users

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreInsertAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h1"})
	require.NoError(t, err)
	second, err := store.Insert(ctx, &User{Name: "Bob", Email: "bob@x.com", PasswordHash: "h2"})
	require.NoError(t, err)

	assert.EqualValues(t, 1, first.ID)
	assert.EqualValues(t, 2, second.ID)
	assert.False(t, first.RegisteredAt.IsZero())
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = store.Insert(ctx, &User{Name: "Other", Email: "ann@x.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 大文字小文字は区別する
	_, err = store.Insert(ctx, &User{Name: "Ann", Email: "Ann@x.com"})
	assert.NoError(t, err)
}

func TestMemoryStoreFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	byEmail, err := store.FindByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, created, byEmail)

	byID, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", byID.Name)

	_, err = store.FindByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.FindByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	created, err := store.Insert(ctx, &User{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	created.Name = "Mallory"
	got, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Insert(ctx, &User{Email: "ann@x.com"})
	require.NoError(t, err)

	store.Reset()

	assert.Equal(t, 0, store.Len())
	_, err = store.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	next, err := store.Insert(ctx, &User{Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), next.ID)
	_, err = store.FindByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreConcurrentDuplicateInsert(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 32
	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Insert(ctx, &User{Name: fmt.Sprintf("u%d", i), Email: "same@x.com"})
			if err == nil {
				success.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, success.Load())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreConcurrentDistinctInsertsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	const workers = 50
	ids := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := store.Insert(ctx, &User{Email: fmt.Sprintf("u%d@x.com", i)})
			if err == nil {
				ids <- u.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, workers)
}
