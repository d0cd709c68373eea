// Package postgres implements the PostgreSQL persistence layer for the
// BrainSpark progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// BadgeRepository implements badge.Repository for PostgreSQL.
// Title and active-rank uniqueness live in the schema; violations map
// back to the domain conflict errors.
type BadgeRepository struct {
	conn *Connection
}

// NewBadgeRepository creates a new BadgeRepository.
func NewBadgeRepository(conn *Connection) *BadgeRepository {
	return &BadgeRepository{conn: conn}
}

// Create persists a new badge definition.
func (r *BadgeRepository) Create(ctx context.Context, b *badge.Badge) error {
	query := `
		INSERT INTO badges (id, title, description, xp_threshold, rank, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		b.ID, b.Title, b.Description, b.XPThreshold, b.Rank, b.Active,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if conflictErr := mapBadgeConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("failed to create badge: %w", err)
	}

	return nil
}

// GetByID returns a badge by ID.
func (r *BadgeRepository) GetByID(ctx context.Context, id string) (*badge.Badge, error) {
	query := `
		SELECT id, title, description, xp_threshold, rank, active, created_at, updated_at
		FROM badges
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanBadge(row)
}

// Update persists a modified badge definition.
func (r *BadgeRepository) Update(ctx context.Context, b *badge.Badge) error {
	query := `
		UPDATE badges
		SET title = $1, description = $2, xp_threshold = $3, rank = $4,
			active = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		b.Title, b.Description, b.XPThreshold, b.Rank, b.Active,
		time.Now().UTC(), b.ID,
	)
	if err != nil {
		if conflictErr := mapBadgeConflict(err); conflictErr != nil {
			return conflictErr
		}
		return fmt.Errorf("failed to update badge: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrBadgeNotFound
	}

	return nil
}

// ListActive returns all active badges.
func (r *BadgeRepository) ListActive(ctx context.Context) ([]*badge.Badge, error) {
	return r.list(ctx, `
		SELECT id, title, description, xp_threshold, rank, active, created_at, updated_at
		FROM badges
		WHERE active
		ORDER BY rank DESC
	`)
}

// ListAll returns the full catalog, active and inactive.
func (r *BadgeRepository) ListAll(ctx context.Context) ([]*badge.Badge, error) {
	return r.list(ctx, `
		SELECT id, title, description, xp_threshold, rank, active, created_at, updated_at
		FROM badges
		ORDER BY rank DESC, title
	`)
}

func (r *BadgeRepository) list(ctx context.Context, query string) ([]*badge.Badge, error) {
	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.Badge
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

// mapBadgeConflict translates unique violations into domain conflict
// errors based on the violated constraint. Returns nil for other errors.
func mapBadgeConflict(err error) error {
	switch UniqueConstraint(err) {
	case "badges_title_unique":
		return shared.ErrBadgeTitleTaken
	case "badges_active_rank_unique":
		return shared.ErrBadgeRankTaken
	}
	return nil
}

func scanBadge(row pgx.Row) (*badge.Badge, error) {
	var b badge.Badge
	var createdAt, updatedAt time.Time

	err := row.Scan(&b.ID, &b.Title, &b.Description, &b.XPThreshold,
		&b.Rank, &b.Active, &createdAt, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrBadgeNotFound
		}
		return nil, fmt.Errorf("failed to scan badge: %w", err)
	}

	b.CreatedAt = createdAt.UTC()
	b.UpdatedAt = updatedAt.UTC()
	return &b, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER BADGE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserBadgeRepository implements badge.UserBadgeRepository for PostgreSQL.
type UserBadgeRepository struct {
	conn *Connection
}

// NewUserBadgeRepository creates a new UserBadgeRepository.
func NewUserBadgeRepository(conn *Connection) *UserBadgeRepository {
	return &UserBadgeRepository{conn: conn}
}

// Get returns the badge currently held by the user, joined with its
// definition.
func (r *UserBadgeRepository) Get(ctx context.Context, userID string) (*badge.UserBadge, *badge.Badge, error) {
	query := `
		SELECT ub.user_id, ub.badge_id, ub.awarded_at,
			   b.id, b.title, b.description, b.xp_threshold, b.rank, b.active,
			   b.created_at, b.updated_at
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
	`

	var ub badge.UserBadge
	var b badge.Badge
	var awardedAt, createdAt, updatedAt time.Time

	err := r.conn.QueryRow(ctx, query, userID).Scan(
		&ub.UserID, &ub.BadgeID, &awardedAt,
		&b.ID, &b.Title, &b.Description, &b.XPThreshold, &b.Rank, &b.Active,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil, shared.ErrUserBadgeNotFound
		}
		return nil, nil, fmt.Errorf("failed to query user badge: %w", err)
	}

	ub.AwardedAt = awardedAt.UTC()
	b.CreatedAt = createdAt.UTC()
	b.UpdatedAt = updatedAt.UTC()
	return &ub, &b, nil
}

// Upsert stores the award, replacing any badge the user held before.
func (r *UserBadgeRepository) Upsert(ctx context.Context, ub *badge.UserBadge) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET badge_id = EXCLUDED.badge_id, awarded_at = EXCLUDED.awarded_at
	`

	_, err := r.conn.Exec(ctx, query, ub.UserID, ub.BadgeID, ub.AwardedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user badge: %w", err)
	}

	return nil
}

// CountByBadge returns how many users hold each badge.
func (r *UserBadgeRepository) CountByBadge(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT badge_id, COUNT(*)
		FROM user_badges
		GROUP BY badge_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count user badges: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var badgeID string
		var count int
		if err := rows.Scan(&badgeID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan badge count: %w", err)
		}
		counts[badgeID] = count
	}

	return counts, rows.Err()
}
