package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// XP BOARD ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrBoardEmpty is returned when the XP board has no entries.
	ErrBoardEmpty = errors.New("xp_board: board is empty")

	// ErrUserNotOnBoard is returned when a user is not found on the board.
	ErrUserNotOnBoard = errors.New("xp_board: user not on board")
)

// ══════════════════════════════════════════════════════════════════════════════
// XP BOARD CACHE
// ══════════════════════════════════════════════════════════════════════════════

// BoardEntry is a single ranked entry on the XP board.
type BoardEntry struct {
	// UserID is the user identifier.
	UserID string `json:"user_id"`

	// XP is the user's total experience points.
	XP int `json:"xp"`

	// Rank is the position on the board (1-based).
	Rank int64 `json:"rank"`
}

// XPBoardCache keeps hot XP rankings in a Redis sorted set.
//
// Architecture:
//   - Sorted set "xpboard:global" stores userID -> XP mapping
//
// Rank lookups are O(log N), range queries O(log N + M). The board is
// updated from XP-gained events, so it may briefly trail the database;
// persistent state in PostgreSQL stays authoritative.
type XPBoardCache struct {
	cache *Cache
}

// NewXPBoardCache creates a new XPBoardCache instance.
func NewXPBoardCache(cache *Cache) *XPBoardCache {
	return &XPBoardCache{cache: cache}
}

// UpdateScore sets a user's XP on the board. O(log N).
func (b *XPBoardCache) UpdateScore(ctx context.Context, userID string, xp int) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return b.cache.Client().ZAdd(ctx, XPBoardKey(), redis.Z{
		Score:  float64(xp),
		Member: userID,
	}).Err()
}

// Remove drops a user from the board.
func (b *XPBoardCache) Remove(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrCacheKeyEmpty
	}

	return b.cache.Client().ZRem(ctx, XPBoardKey(), userID).Err()
}

// Top returns the highest-XP entries, best first.
func (b *XPBoardCache) Top(ctx context.Context, limit int) ([]BoardEntry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("xp_board: limit must be positive, got %d", limit)
	}

	results, err := b.cache.Client().ZRevRangeWithScores(ctx, XPBoardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("xp_board: failed to read rankings: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrBoardEmpty
	}

	entries := make([]BoardEntry, 0, len(results))
	for i, z := range results {
		userID, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, BoardEntry{
			UserID: userID,
			XP:     int(z.Score),
			Rank:   int64(i + 1),
		})
	}

	return entries, nil
}

// Rank returns a user's 1-based position on the board.
func (b *XPBoardCache) Rank(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, ErrCacheKeyEmpty
	}

	rank, err := b.cache.Client().ZRevRank(ctx, XPBoardKey(), userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrUserNotOnBoard
		}
		return 0, fmt.Errorf("xp_board: failed to read rank: %w", err)
	}

	return rank + 1, nil
}

// Size returns the number of users on the board.
func (b *XPBoardCache) Size(ctx context.Context) (int64, error) {
	return b.cache.Client().ZCard(ctx, XPBoardKey()).Result()
}

// Rebuild replaces the whole board with the given scores. Used on
// startup to seed the board from the database.
func (b *XPBoardCache) Rebuild(ctx context.Context, scores map[string]int) error {
	key := XPBoardKey()
	pipe := b.cache.Client().TxPipeline()
	pipe.Del(ctx, key)

	members := make([]redis.Z, 0, len(scores))
	for userID, xp := range scores {
		members = append(members, redis.Z{Score: float64(xp), Member: userID})
	}
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("xp_board: failed to rebuild: %w", err)
	}

	return nil
}
