package redis

import (
	"context"
	"errors"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// cachedProgress is the JSON shape stored in Redis. Kept separate from
// the domain entity so the cache format can evolve independently.
type cachedProgress struct {
	UserID    string    `json:"user_id"`
	XP        int       `json:"xp"`
	Level     int       `json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressCache implements progression.Cache using the generic Redis Cache.
type ProgressCache struct {
	cache *Cache
}

// NewProgressCache creates a new ProgressCache.
func NewProgressCache(cache *Cache) *ProgressCache {
	return &ProgressCache{cache: cache}
}

// Get gets a user's progress from cache.
// A cache miss maps to shared.ErrProgressNotFound so callers can treat
// it like a repository miss.
func (c *ProgressCache) Get(ctx context.Context, userID string) (*progression.UserProgress, error) {
	var cp cachedProgress
	if err := c.cache.Get(ctx, ProgressKey(userID), &cp); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrProgressNotFound
		}
		return nil, err
	}

	return &progression.UserProgress{
		UserID:    cp.UserID,
		XP:        cp.XP,
		Level:     cp.Level,
		CreatedAt: cp.CreatedAt,
		UpdatedAt: cp.UpdatedAt,
	}, nil
}

// Set stores a user's progress in cache.
func (c *ProgressCache) Set(ctx context.Context, p *progression.UserProgress, ttl time.Duration) error {
	if p == nil {
		return nil
	}

	cp := cachedProgress{
		UserID:    p.UserID,
		XP:        p.XP,
		Level:     p.Level,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	return c.cache.Set(ctx, ProgressKey(p.UserID), cp, ttl)
}

// Invalidate removes a user's cached progress.
func (c *ProgressCache) Invalidate(ctx context.Context, userID string) error {
	return c.cache.Delete(ctx, ProgressKey(userID))
}
