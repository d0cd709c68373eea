package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE QUERIES
// Каталог значков и значок пользователя.
// ══════════════════════════════════════════════════════════════════════════════

// BadgeDTO - DTO определения значка.
type BadgeDTO struct {
	// ID - идентификатор значка.
	ID string `json:"id"`

	// Title - название.
	Title string `json:"title"`

	// Description - описание.
	Description string `json:"description,omitempty"`

	// XPThreshold - необходимый суммарный XP.
	XPThreshold int `json:"xp_threshold"`

	// Rank - ранг значка.
	Rank int `json:"rank"`

	// Active - участвует ли значок в выдаче.
	Active bool `json:"active"`

	// HolderCount - сколько пользователей держат значок.
	HolderCount int `json:"holder_count,omitempty"`
}

// ListBadgesQuery содержит параметры запроса каталога.
type ListBadgesQuery struct {
	// IncludeInactive - включить отключённые значки.
	IncludeInactive bool

	// IncludeHolderCounts - посчитать держателей каждого значка.
	IncludeHolderCounts bool
}

// ListBadgesHandler обрабатывает ListBadgesQuery.
type ListBadgesHandler struct {
	badgeRepo     badge.Repository
	userBadgeRepo badge.UserBadgeRepository
}

// NewListBadgesHandler создаёт обработчик.
func NewListBadgesHandler(badgeRepo badge.Repository, userBadgeRepo badge.UserBadgeRepository) *ListBadgesHandler {
	return &ListBadgesHandler{badgeRepo: badgeRepo, userBadgeRepo: userBadgeRepo}
}

// Handle выполняет запрос каталога значков, от старшего ранга к младшему.
func (h *ListBadgesHandler) Handle(ctx context.Context, q ListBadgesQuery) ([]*BadgeDTO, error) {
	var (
		badges []*badge.Badge
		err    error
	)
	if q.IncludeInactive {
		badges, err = h.badgeRepo.ListAll(ctx)
	} else {
		badges, err = h.badgeRepo.ListActive(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list_badges: %w", err)
	}

	badge.SortByRankDesc(badges)

	var counts map[string]int
	if q.IncludeHolderCounts {
		counts, err = h.userBadgeRepo.CountByBadge(ctx)
		if err != nil {
			return nil, fmt.Errorf("list_badges: failed to count holders: %w", err)
		}
	}

	out := make([]*BadgeDTO, 0, len(badges))
	for _, b := range badges {
		dto := &BadgeDTO{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			XPThreshold: b.XPThreshold,
			Rank:        b.Rank,
			Active:      b.Active,
		}
		if counts != nil {
			dto.HolderCount = counts[b.ID]
		}
		out = append(out, dto)
	}
	return out, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET USER BADGE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetUserBadgeQuery содержит параметры запроса значка пользователя.
type GetUserBadgeQuery struct {
	// UserID - идентификатор пользователя.
	UserID string
}

// Validate проверяет корректность параметров.
func (q GetUserBadgeQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_user_badge: user_id is required")
	}
	return nil
}

// UserBadgeDTO - DTO значка пользователя.
type UserBadgeDTO struct {
	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// Badge - определение значка.
	Badge BadgeDTO `json:"badge"`

	// AwardedAt - когда значок выдан.
	AwardedAt time.Time `json:"awarded_at"`
}

// GetUserBadgeHandler обрабатывает GetUserBadgeQuery.
type GetUserBadgeHandler struct {
	userBadgeRepo badge.UserBadgeRepository
}

// NewGetUserBadgeHandler создаёт обработчик.
func NewGetUserBadgeHandler(userBadgeRepo badge.UserBadgeRepository) *GetUserBadgeHandler {
	return &GetUserBadgeHandler{userBadgeRepo: userBadgeRepo}
}

// Handle выполняет запрос значка пользователя.
// Возвращает NotFound, если пользователь не держит значок.
func (h *GetUserBadgeHandler) Handle(ctx context.Context, q GetUserBadgeQuery) (*UserBadgeDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ub, b, err := h.userBadgeRepo.Get(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get_user_badge: %w", err)
	}

	return &UserBadgeDTO{
		UserID: ub.UserID,
		Badge: BadgeDTO{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			XPThreshold: b.XPThreshold,
			Rank:        b.Rank,
			Active:      b.Active,
		},
		AwardedAt: ub.AwardedAt,
	}, nil
}
