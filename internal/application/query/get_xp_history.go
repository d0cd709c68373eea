package query

import (
	"context"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET XP HISTORY QUERY
// Журнал начислений только читается; записи создаёт путь начисления XP.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultHistoryLimit - количество записей журнала по умолчанию.
const DefaultHistoryLimit = 50

// GetXPHistoryQuery - запрос журнала начислений пользователя.
type GetXPHistoryQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// Limit - максимум записей (0 - значение по умолчанию).
	Limit int
}

// Validate проверяет корректность запроса.
func (q GetXPHistoryQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	return nil
}

// LedgerEntryDTO - запись журнала для чтения.
type LedgerEntryDTO struct {
	Delta      int       `json:"delta"`
	XPAfter    int       `json:"xp_after"`
	LevelAfter int       `json:"level_after"`
	Source     string    `json:"source,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GetXPHistoryHandler обрабатывает запрос журнала начислений.
type GetXPHistoryHandler struct {
	historyRepo progression.HistoryRepository
}

// NewGetXPHistoryHandler создаёт обработчик запроса журнала.
func NewGetXPHistoryHandler(historyRepo progression.HistoryRepository) *GetXPHistoryHandler {
	return &GetXPHistoryHandler{historyRepo: historyRepo}
}

// Handle возвращает последние начисления пользователя, новые первыми.
// Отсутствие записей - пустой список, а не ошибка.
func (h *GetXPHistoryHandler) Handle(ctx context.Context, query GetXPHistoryQuery) ([]LedgerEntryDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	limit := query.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	entries, err := h.historyRepo.History(ctx, query.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load xp history: %w", err)
	}

	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, LedgerEntryDTO{
			Delta:      e.Delta,
			XPAfter:    e.XPAfter,
			LevelAfter: e.LevelAfter,
			Source:     e.Source,
			CreatedAt:  e.CreatedAt,
		})
	}

	return dtos, nil
}
