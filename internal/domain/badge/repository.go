package badge

import (
	"context"
)

// Repository defines storage operations for the badge catalog.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create persists a new badge definition.
	// Returns shared.ErrBadgeTitleTaken or shared.ErrBadgeRankTaken
	// when a uniqueness constraint is violated.
	Create(ctx context.Context, b *Badge) error

	// GetByID returns a badge by ID.
	// Returns shared.ErrBadgeNotFound when absent.
	GetByID(ctx context.Context, id string) (*Badge, error)

	// Update persists a modified badge definition.
	// Uniqueness violations map to the same conflict errors as Create.
	Update(ctx context.Context, b *Badge) error

	// ListActive returns all active badges.
	ListActive(ctx context.Context) ([]*Badge, error)

	// ListAll returns the full catalog, active and inactive.
	ListAll(ctx context.Context) ([]*Badge, error)
}

// UserBadgeRepository defines storage operations for badge awards.
type UserBadgeRepository interface {
	// Get returns the badge currently held by the user, joined with its
	// definition. Returns shared.ErrUserBadgeNotFound when the user
	// holds no badge.
	Get(ctx context.Context, userID string) (*UserBadge, *Badge, error)

	// Upsert stores the award, replacing any lower-ranked badge the
	// user held before.
	Upsert(ctx context.Context, ub *UserBadge) error

	// CountByBadge returns how many users hold each badge.
	CountByBadge(ctx context.Context) (map[string]int, error)
}
