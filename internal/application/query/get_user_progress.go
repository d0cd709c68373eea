// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER PROGRESS QUERY
// Возвращает XP, уровень и порог следующего уровня для пользователя.
// Чтение несуществующего пользователя - ошибка NotFound: ленивое
// создание записи происходит только при начислении XP, не при чтении.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultProgressCacheTTL - время жизни кешированного прогресса.
const DefaultProgressCacheTTL = 5 * time.Minute

// GetUserProgressQuery содержит параметры запроса прогресса.
type GetUserProgressQuery struct {
	// UserID - идентификатор пользователя.
	UserID string
}

// Validate проверяет корректность параметров.
func (q GetUserProgressQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("get_user_progress: user_id is required")
	}
	return nil
}

// UserProgressDTO - DTO прогресса пользователя.
type UserProgressDTO struct {
	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// XP - накопленный опыт.
	XP int `json:"xp"`

	// Level - текущий уровень.
	Level int `json:"level"`

	// NextLevelThreshold - суммарный XP до следующего уровня.
	NextLevelThreshold int `json:"next_level_threshold"`

	// ProgressPercent - процент прогресса внутри уровня (0-100).
	ProgressPercent int `json:"progress_percent"`

	// UpdatedAt - когда прогресс последний раз менялся.
	UpdatedAt time.Time `json:"updated_at"`
}

// GetUserProgressHandler обрабатывает GetUserProgressQuery.
type GetUserProgressHandler struct {
	progressRepo progression.Repository
	cache        progression.Cache
	calc         *progression.Calculator
	cacheTTL     time.Duration
}

// NewGetUserProgressHandler создаёт обработчик. Кеш опционален:
// при nil каждый запрос идёт в хранилище.
func NewGetUserProgressHandler(
	progressRepo progression.Repository,
	cache progression.Cache,
	calc *progression.Calculator,
) *GetUserProgressHandler {
	return &GetUserProgressHandler{
		progressRepo: progressRepo,
		cache:        cache,
		calc:         calc,
		cacheTTL:     DefaultProgressCacheTTL,
	}
}

// Handle выполняет запрос прогресса.
func (h *GetUserProgressHandler) Handle(ctx context.Context, q GetUserProgressQuery) (*UserProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	// Сначала кеш: ошибки кеша не фатальны, идём в хранилище.
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, q.UserID); err == nil {
			return h.toDTO(cached), nil
		}
	}

	progress, err := h.progressRepo.GetByUserID(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get_user_progress: %w", err)
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, progress, h.cacheTTL)
	}

	return h.toDTO(progress), nil
}

// toDTO преобразует сущность в DTO.
func (h *GetUserProgressHandler) toDTO(p *progression.UserProgress) *UserProgressDTO {
	return &UserProgressDTO{
		UserID:             p.UserID,
		XP:                 p.XP,
		Level:              p.Level,
		NextLevelThreshold: h.calc.NextLevelThreshold(p.Level),
		ProgressPercent:    h.calc.ProgressPercent(p.XP),
		UpdatedAt:          p.UpdatedAt,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TOP PROGRESS QUERY
// Возвращает пользователей с наибольшим XP.
// ══════════════════════════════════════════════════════════════════════════════

// TopProgressQuery содержит параметры запроса топа по XP.
type TopProgressQuery struct {
	// Limit - сколько пользователей вернуть (по умолчанию 10).
	Limit int
}

// Validate проверяет и нормализует параметры.
func (q *TopProgressQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// TopProgressHandler обрабатывает TopProgressQuery.
type TopProgressHandler struct {
	progressRepo progression.Repository
	calc         *progression.Calculator
}

// NewTopProgressHandler создаёт обработчик.
func NewTopProgressHandler(progressRepo progression.Repository, calc *progression.Calculator) *TopProgressHandler {
	return &TopProgressHandler{progressRepo: progressRepo, calc: calc}
}

// Handle выполняет запрос топа.
func (h *TopProgressHandler) Handle(ctx context.Context, q TopProgressQuery) ([]*UserProgressDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	top, err := h.progressRepo.TopByXP(ctx, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("top_progress: %w", err)
	}

	out := make([]*UserProgressDTO, 0, len(top))
	for _, p := range top {
		out = append(out, &UserProgressDTO{
			UserID:             p.UserID,
			XP:                 p.XP,
			Level:              p.Level,
			NextLevelThreshold: h.calc.NextLevelThreshold(p.Level),
			ProgressPercent:    h.calc.ProgressPercent(p.XP),
			UpdatedAt:          p.UpdatedAt,
		})
	}
	return out, nil
}
