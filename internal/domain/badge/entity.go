// Package badge contains domain entities and business logic for the badge
// catalog and badge awarding. Badges are ranked achievements unlocked by
// cumulative XP; a user holds at most the highest badge they qualify for,
// and awards are never revoked or downgraded.
// This is a pure domain layer with zero external dependencies.
package badge

import (
	"sort"
	"strings"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// Badge represents a badge definition in the catalog.
type Badge struct {
	ID          string
	Title       string
	Description string

	// XPThreshold is the cumulative XP required to qualify.
	XPThreshold int

	// Rank orders badges; higher rank means a more prestigious badge.
	// Rank is unique among active badges.
	Rank int

	// Active badges participate in assignment; inactive ones are kept
	// for history but never awarded.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks badge invariants before persisting.
func (b *Badge) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return shared.ErrEmptyBadgeTitle
	}
	if b.XPThreshold < 0 {
		return shared.ErrInvalidXpThreshold
	}
	if b.Rank <= 0 {
		return shared.ErrInvalidBadgeRank
	}
	return nil
}

// NewBadge creates a badge definition with validation.
func NewBadge(id, title, description string, xpThreshold, rank int) (*Badge, error) {
	now := time.Now().UTC()
	b := &Badge{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		XPThreshold: xpThreshold,
		Rank:        rank,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateParams carries a partial badge update. Nil fields are left
// untouched; only explicitly provided fields are merged.
type UpdateParams struct {
	Title       *string
	Description *string
	XPThreshold *int
	Rank        *int
	Active      *bool
}

// ApplyUpdate merges the provided fields into the badge and
// re-validates the result. The merge is field-by-field so an update
// never silently zeroes a field the caller did not mention.
func (b *Badge) ApplyUpdate(params UpdateParams) error {
	if params.Title != nil {
		b.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		b.Description = strings.TrimSpace(*params.Description)
	}
	if params.XPThreshold != nil {
		b.XPThreshold = *params.XPThreshold
	}
	if params.Rank != nil {
		b.Rank = *params.Rank
	}
	if params.Active != nil {
		b.Active = *params.Active
	}
	if err := b.Validate(); err != nil {
		return err
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// UserBadge represents a badge held by a user. A user holds at most one
// badge; it only ever moves up in rank.
type UserBadge struct {
	UserID    string
	BadgeID   string
	AwardedAt time.Time
}

// NewUserBadge creates an award record.
func NewUserBadge(userID, badgeID string) *UserBadge {
	return &UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: time.Now().UTC(),
	}
}

// HighestQualifying returns the active badge with the greatest rank whose
// threshold the user's XP meets, or nil when none qualifies.
// The input slice is not modified.
func HighestQualifying(badges []*Badge, xp int) *Badge {
	var best *Badge
	for _, b := range badges {
		if b == nil || !b.Active {
			continue
		}
		if xp < b.XPThreshold {
			continue
		}
		if best == nil || b.Rank > best.Rank {
			best = b
		}
	}
	return best
}

// Evaluation describes the outcome of evaluating one user against the
// badge catalog.
type Evaluation struct {
	// Award is the badge to assign, or nil when nothing changes.
	Award *Badge

	// Current is the badge the user already holds, or nil.
	Current *Badge
}

// ShouldAward reports whether the evaluation results in a new award.
func (e Evaluation) ShouldAward() bool {
	return e.Award != nil
}

// Evaluate decides whether a user should receive a new badge.
// A badge is awarded only when the highest qualifying badge outranks the
// badge currently held; equal or lower rank is a no-op, which makes the
// whole pass idempotent. Holding a badge that has since been deactivated
// still counts: awards are never taken away.
func Evaluate(badges []*Badge, current *Badge, xp int) Evaluation {
	candidate := HighestQualifying(badges, xp)
	if candidate == nil {
		return Evaluation{Current: current}
	}
	if current != nil && candidate.Rank <= current.Rank {
		return Evaluation{Current: current}
	}
	return Evaluation{Award: candidate, Current: current}
}

// SortByRankDesc sorts badges by rank, highest first. Used for stable
// presentation of the catalog.
func SortByRankDesc(badges []*Badge) {
	sort.Slice(badges, func(i, j int) bool {
		return badges[i].Rank > badges[j].Rank
	})
}
