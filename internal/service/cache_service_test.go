package service

import (
	"context"
	"testing"

	"camphub-be/internal/domain"
	"camphub-be/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCacheWithRedis(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	client := redis.NewClientFromRedis(rdb, "development", zap.NewNop())
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheService(client, zap.NewNop()), mr
}

func TestCacheServiceNilClientFallsThrough(t *testing.T) {
	cache := NewCacheService(nil, zap.NewNop())
	ctx := context.Background()

	loads := 0
	accepting, err := cache.GetCampAcceptingWithCache(ctx, "c1", func(context.Context) (bool, error) {
		loads++
		return true, nil
	})
	require.NoError(t, err)
	assert.True(t, accepting)
	assert.Equal(t, 1, loads)

	// Without Redis the lock always grants; storage stays the arbiter.
	assert.True(t, cache.TryCorrelateLock(ctx, "inv-1"))
	assert.True(t, cache.TryCorrelateLock(ctx, "inv-1"))
}

func TestGetCampAcceptingWithCacheCachesResult(t *testing.T) {
	cache, _ := newCacheWithRedis(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (bool, error) {
		loads++
		return true, nil
	}

	accepting, err := cache.GetCampAcceptingWithCache(ctx, "c1", loader)
	require.NoError(t, err)
	assert.True(t, accepting)

	accepting, err = cache.GetCampAcceptingWithCache(ctx, "c1", loader)
	require.NoError(t, err)
	assert.True(t, accepting)
	assert.Equal(t, 1, loads)
}

func TestGetAvailableSlotsWithCacheRoundTrip(t *testing.T) {
	cache, _ := newCacheWithRedis(t)
	ctx := context.Background()

	seed := []domain.CallSlot{{ID: "s1", CampID: "c1", MaxParticipants: 3, IsAvailable: true}}
	loads := 0
	loader := func(context.Context) ([]domain.CallSlot, error) {
		loads++
		return seed, nil
	}

	slots, err := cache.GetAvailableSlotsWithCache(ctx, "c1", loader)
	require.NoError(t, err)
	require.Len(t, slots, 1)

	slots, err = cache.GetAvailableSlotsWithCache(ctx, "c1", loader)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "s1", slots[0].ID)
	assert.Equal(t, 1, loads)

	// Invalidation forces the next read back to the loader.
	cache.InvalidateSlots(ctx, "c1")
	_, err = cache.GetAvailableSlotsWithCache(ctx, "c1", loader)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestTryCorrelateLockSingleWinner(t *testing.T) {
	cache, _ := newCacheWithRedis(t)
	ctx := context.Background()

	assert.True(t, cache.TryCorrelateLock(ctx, "inv-1"))
	assert.False(t, cache.TryCorrelateLock(ctx, "inv-1"))
	assert.True(t, cache.TryCorrelateLock(ctx, "inv-2"))
}

func TestTryCorrelateLockDegradesOnRedisFailure(t *testing.T) {
	cache, mr := newCacheWithRedis(t)
	mr.Close()

	// A dead Redis must not block correlation.
	assert.True(t, cache.TryCorrelateLock(context.Background(), "inv-1"))
}
