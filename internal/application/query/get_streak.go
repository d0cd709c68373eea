package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
	"github.com/brainspark/brainspark-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STREAK QUERY
// Возвращает состояние серии пользователя. В отличие от прогресса,
// отсутствие записи не ошибка: пользователь без активности имеет
// нулевую серию.
// ══════════════════════════════════════════════════════════════════════════════

// GetStreakQuery содержит параметры запроса серии.
type GetStreakQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// Timezone - часовой пояс пользователя для проверки IsBroken.
	// Пустое значение означает UTC, неизвестное имя отклоняется.
	Timezone string
}

// Validate проверяет корректность параметров.
func (q GetStreakQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_streak: user_id is required")
	}
	if _, err := shared.NewTimezone(q.Timezone); err != nil {
		return err
	}
	return nil
}

// StreakDTO - DTO состояния серии.
type StreakDTO struct {
	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// CurrentStreak - текущая серия дней.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak - лучшая серия за всё время.
	LongestStreak int `json:"longest_streak"`

	// LastActivityDate - дата последней активности (YYYY-MM-DD, пустая = не было).
	LastActivityDate string `json:"last_activity_date,omitempty"`

	// IsBroken - серия прервана (активность была раньше вчерашнего дня).
	IsBroken bool `json:"is_broken"`

	// LastMilestoneReached - последняя достигнутая веха.
	LastMilestoneReached int `json:"last_milestone_reached,omitempty"`
}

// GetStreakHandler обрабатывает GetStreakQuery.
type GetStreakHandler struct {
	streakRepo streak.Repository
	clock      timeutil.Clock
}

// NewGetStreakHandler создаёт обработчик.
func NewGetStreakHandler(streakRepo streak.Repository, clock timeutil.Clock) *GetStreakHandler {
	return &GetStreakHandler{streakRepo: streakRepo, clock: clock}
}

// Handle выполняет запрос серии.
func (h *GetStreakHandler) Handle(ctx context.Context, q GetStreakQuery) (*StreakDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.streakRepo.GetByUserID(ctx, q.UserID)
	if err != nil {
		// Нет записи - нулевая серия, не ошибка.
		state = streak.NewState(q.UserID)
	}

	today := timeutil.DateIn(h.clock, q.Timezone, 0)
	yesterday := timeutil.DateIn(h.clock, q.Timezone, -1)

	dto := &StreakDTO{
		UserID:               state.UserID,
		CurrentStreak:        state.CurrentStreak,
		LongestStreak:        state.LongestStreak,
		IsBroken:             state.IsBroken(today, yesterday),
		LastMilestoneReached: state.LastMilestoneReached,
	}
	if !state.LastActivityDate.IsZero() {
		dto.LastActivityDate = state.LastActivityDate.String()
	}
	return dto, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TOP STREAKS QUERY
// Возвращает пользователей с самыми длинными текущими сериями.
// ══════════════════════════════════════════════════════════════════════════════

// TopStreaksQuery содержит параметры запроса топа серий.
type TopStreaksQuery struct {
	// Limit - сколько пользователей вернуть (по умолчанию 10).
	Limit int
}

// Validate проверяет и нормализует параметры.
func (q *TopStreaksQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// TopStreaksHandler обрабатывает TopStreaksQuery.
type TopStreaksHandler struct {
	streakRepo streak.Repository
}

// NewTopStreaksHandler создаёт обработчик.
func NewTopStreaksHandler(streakRepo streak.Repository) *TopStreaksHandler {
	return &TopStreaksHandler{streakRepo: streakRepo}
}

// Handle выполняет запрос топа серий.
func (h *TopStreaksHandler) Handle(ctx context.Context, q TopStreaksQuery) ([]*StreakDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	top, err := h.streakRepo.TopCurrent(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("top_streaks: %w", err)
	}

	out := make([]*StreakDTO, 0, len(top))
	for _, s := range top {
		dto := &StreakDTO{
			UserID:               s.UserID,
			CurrentStreak:        s.CurrentStreak,
			LongestStreak:        s.LongestStreak,
			LastMilestoneReached: s.LastMilestoneReached,
		}
		if !s.LastActivityDate.IsZero() {
			dto.LastActivityDate = s.LastActivityDate.String()
		}
		out = append(out, dto)
	}
	return out, nil
}
