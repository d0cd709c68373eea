package streak

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с сериями пользователей.
type Repository interface {
	// GetByUserID возвращает состояние серии пользователя.
	// Возвращает shared.ErrStreakNotFound, если записи нет.
	GetByUserID(ctx context.Context, userID string) (*State, error)

	// Mutate атомарно изменяет состояние серии: запись читается под
	// блокировкой, fn применяется, результат сохраняется в той же
	// транзакции. Отсутствующая запись лениво создаётся пустой.
	Mutate(ctx context.Context, userID string, fn func(*State) error) (*State, error)

	// TopCurrent возвращает пользователей с самыми длинными
	// текущими сериями.
	TopCurrent(ctx context.Context, limit int) ([]*State, error)
}
