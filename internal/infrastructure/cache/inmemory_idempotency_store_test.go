package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "payment:FLUTTERWAVE:tx_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim on the same key loses
	claimed, err = store.MarkProcessed(ctx, "payment:FLUTTERWAVE:tx_1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	// Different key is independent
	claimed, err = store.MarkProcessed(ctx, "payment:PAYSTACK:tx_1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestInMemoryIdempotencyStore_ExpiredClaimCanBeRetaken(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "key", time.Millisecond)
	require.NoError(t, err)
	require.True(t, claimed)

	time.Sleep(5 * time.Millisecond)

	claimed, err = store.MarkProcessed(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.MarkProcessed(ctx, "key", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Release(ctx, "key"))

	claimed, err := store.MarkProcessed(ctx, "key", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestInMemoryIdempotencyStore_SingleWinnerUnderConcurrency(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	const goroutines = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.MarkProcessed(ctx, "contested", time.Minute)
			assert.NoError(t, err)
			if claimed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
