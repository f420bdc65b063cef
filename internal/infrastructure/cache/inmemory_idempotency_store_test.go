package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := store.Claim(ctx, "payment:a", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Claim(ctx, "payment:a", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("released key can be claimed again", func(t *testing.T) {
		ok, err := store.Claim(ctx, "payment:b", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "payment:b"))

		ok, err = store.Claim(ctx, "payment:b", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("expired claim can be taken over", func(t *testing.T) {
		now := time.Now()
		store.now = func() time.Time { return now }
		defer func() { store.now = time.Now }()

		ok, _ := store.Claim(ctx, "payment:c", time.Minute)
		require.True(t, ok)

		now = now.Add(2 * time.Minute)
		ok, err := store.Claim(ctx, "payment:c", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Claim(context.Background(), "payment:same", time.Hour); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Now()
	store.now = func() time.Time { return now }
	_, _ = store.Claim(context.Background(), "old", time.Second)
	_, _ = store.Claim(context.Background(), "fresh", time.Hour)

	now = now.Add(time.Minute)
	store.cleanup()
	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

func TestNewIdempotencyStore_FallsBackWithoutClient(t *testing.T) {
	store := NewIdempotencyStore(nil, nil)
	defer store.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}
