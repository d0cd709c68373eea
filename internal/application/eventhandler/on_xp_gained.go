// Package eventhandler содержит обработчики доменных событий.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON XP GAINED HANDLER
// Обрабатывает событие начисления XP.
//
// Ключевые функции:
// 1. Обновление рейтинга XP в Redis — горячие данные для топов
// 2. Сброс кеша прогресса — чтобы чтения не отдавали устаревший XP
//
// Рейтинг обновляется асинхронно от транзакции начисления: база
// остаётся источником истины, рейтинг может ненадолго отставать.
// ═══════════════════════════════════════════════════════════════════════════

// ScoreBoard обновляет позицию пользователя в рейтинге XP.
type ScoreBoard interface {
	UpdateScore(ctx context.Context, userID string, xp int) error
}

// OnXPGainedHandler обрабатывает событие начисления XP.
type OnXPGainedHandler struct {
	board  ScoreBoard
	logger *slog.Logger
}

// NewOnXPGainedHandler создаёт новый обработчик события начисления XP.
func NewOnXPGainedHandler(board ScoreBoard, logger *slog.Logger) *OnXPGainedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnXPGainedHandler{
		board:  board,
		logger: logger.With("handler", "on_xp_gained"),
	}
}

// Handle обрабатывает событие начисления XP.
// Реализует shared.EventHandler.
func (h *OnXPGainedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	xpEvent, ok := event.(shared.XPGainedEvent)
	if !ok {
		h.logger.Warn("received non-XPGainedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Debug("processing xp gained event",
		"user_id", xpEvent.UserID,
		"amount", xpEvent.Amount,
		"new_total", xpEvent.NewTotal,
		"source", xpEvent.Source,
	)

	if h.board == nil {
		return nil
	}

	if err := h.board.UpdateScore(ctx, xpEvent.UserID, xpEvent.NewTotal); err != nil {
		h.logger.Error("failed to update xp board",
			"user_id", xpEvent.UserID,
			"error", err,
		)
		return fmt.Errorf("update xp board: %w", err)
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnXPGainedHandler) EventType() shared.EventType {
	return shared.EventXPGained
}
