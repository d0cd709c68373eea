package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/pkg/retry"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON STREAK MILESTONE HANDLER
// Обрабатывает достижение вехи серии.
//
// Веха вознаграждается бонусным XP: серия поощряет регулярность, а
// бонус делает веху ощутимой. Начисление идёт через обычный путь
// начисления XP, поэтому уровень и рейтинг обновляются как обычно.
// ═══════════════════════════════════════════════════════════════════════════

// XPGranter начисляет пользователю XP из системного источника.
type XPGranter interface {
	Grant(ctx context.Context, userID string, amount int, source string) error
}

// StreakMilestoneConfig содержит конфигурацию обработчика.
type StreakMilestoneConfig struct {
	// BonusXP — бонус за каждую достигнутую веху.
	// Ноль отключает начисление бонуса.
	BonusXP int
}

// DefaultStreakMilestoneConfig возвращает конфигурацию по умолчанию.
func DefaultStreakMilestoneConfig() StreakMilestoneConfig {
	return StreakMilestoneConfig{
		BonusXP: 100,
	}
}

// OnStreakMilestoneHandler обрабатывает достижение вехи серии.
type OnStreakMilestoneHandler struct {
	granter XPGranter
	retrier *retry.Retrier
	logger  *slog.Logger
	config  StreakMilestoneConfig
}

// NewOnStreakMilestoneHandler создаёт новый обработчик вехи серии.
func NewOnStreakMilestoneHandler(
	granter XPGranter,
	logger *slog.Logger,
	config StreakMilestoneConfig,
) *OnStreakMilestoneHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnStreakMilestoneHandler{
		granter: granter,
		retrier: retry.EventHandlerRetrier(),
		logger:  logger.With("handler", "on_streak_milestone"),
		config:  config,
	}
}

// Handle обрабатывает событие вехи серии.
// Реализует shared.EventHandler.
func (h *OnStreakMilestoneHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	milestoneEvent, ok := event.(shared.StreakMilestoneEvent)
	if !ok {
		h.logger.Warn("received non-StreakMilestoneEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing streak milestone event",
		"user_id", milestoneEvent.UserID,
		"milestone", milestoneEvent.Milestone,
		"streak", milestoneEvent.Streak,
	)

	if h.granter == nil || h.config.BonusXP <= 0 {
		return nil
	}

	// Бонус не должен теряться из-за кратковременного сбоя хранилища.
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.granter.Grant(ctx, milestoneEvent.UserID, h.config.BonusXP, "streak_milestone")
	})
	if err != nil {
		h.logger.Error("failed to grant milestone bonus",
			"user_id", milestoneEvent.UserID,
			"milestone", milestoneEvent.Milestone,
			"error", err,
		)
		return fmt.Errorf("grant milestone bonus: %w", err)
	}

	return nil
}

// EventType возвращает тип события, который обрабатывает этот handler.
func (h *OnStreakMilestoneHandler) EventType() shared.EventType {
	return shared.EventStreakMilestone
}
