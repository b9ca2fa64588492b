package service

import (
	"context"
	"encoding/json"

	"camphub-be/internal/domain"
	"camphub-be/pkg/redis"

	"go.uber.org/zap"
)

// CacheService fronts hot read paths with Redis. Every method is nil-safe:
// with no Redis client configured it falls straight through to the loader.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{redis: redisClient, logger: logger}
}

// GetAvailableSlotsWithCache serves the available-slot listing from cache,
// loading and caching on miss.
func (c *CacheService) GetAvailableSlotsWithCache(ctx context.Context, campID string, loader func(ctx context.Context) ([]domain.CallSlot, error)) ([]domain.CallSlot, error) {
	if c.redis == nil {
		return loader(ctx)
	}

	key := c.redis.KeyBuilder.KeySlotsAvailable(campID)
	if cached, err := c.redis.Get(ctx, key); err == nil && cached != "" {
		var slots []domain.CallSlot
		if err := json.Unmarshal([]byte(cached), &slots); err == nil {
			return slots, nil
		}
		c.logger.Warn("corrupt cached slot listing, reloading", zap.String("camp_id", campID))
	}

	slots, err := loader(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(slots); err == nil {
		if err := c.redis.Set(ctx, key, data, redis.TTLSlotsAvailable); err != nil {
			c.logger.Warn("failed to cache slot listing", zap.Error(err))
		}
	}
	return slots, nil
}

// InvalidateSlots drops the cached slot listing for a camp. Called after
// every reserve, release, create, and delete.
func (c *CacheService) InvalidateSlots(ctx context.Context, campID string) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeySlotsAvailable(campID)); err != nil {
		c.logger.Warn("failed to invalidate slot cache",
			zap.String("camp_id", campID),
			zap.Error(err))
	}
}

// GetCampAcceptingWithCache caches the camp's accepting-members flag.
func (c *CacheService) GetCampAcceptingWithCache(ctx context.Context, campID string, loader func(ctx context.Context) (bool, error)) (bool, error) {
	if c.redis == nil {
		return loader(ctx)
	}

	key := c.redis.KeyBuilder.KeyCampAccepting(campID)
	if cached, err := c.redis.Get(ctx, key); err == nil && cached != "" {
		return cached == "1", nil
	}

	accepting, err := loader(ctx)
	if err != nil {
		return false, err
	}

	val := "0"
	if accepting {
		val = "1"
	}
	if err := c.redis.Set(ctx, key, val, redis.TTLCampAccepting); err != nil {
		c.logger.Warn("failed to cache accepting flag", zap.Error(err))
	}
	return accepting, nil
}

// TryCorrelateLock guards invite finalization: only the first caller for a
// given invite id proceeds within the TTL. Degrades to "acquired" without
// Redis; the conditional update in storage remains the final arbiter.
func (c *CacheService) TryCorrelateLock(ctx context.Context, inviteID string) bool {
	if c.redis == nil {
		return true
	}
	key := c.redis.KeyBuilder.KeyInviteCorrelated(inviteID)
	ok, err := c.redis.SetNX(ctx, key, "1", redis.TTLCorrelateLock)
	if err != nil {
		c.logger.Warn("correlate lock check failed, proceeding",
			zap.String("invite_id", inviteID),
			zap.Error(err))
		return true
	}
	return ok
}
