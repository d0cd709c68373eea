package progression

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с прогрессом пользователей.
type Repository interface {
	// GetByUserID возвращает прогресс пользователя.
	// Возвращает shared.ErrProgressNotFound, если записи нет.
	GetByUserID(ctx context.Context, userID string) (*UserProgress, error)

	// Mutate атомарно изменяет прогресс пользователя: запись
	// читается под блокировкой, fn применяется к ней, результат
	// сохраняется в той же транзакции. Если записи нет, она лениво
	// создаётся с нулевым XP до вызова fn. Если fn изменила XP,
	// в журнал начислений добавляется запись с указанным source.
	// Конкурентные вызовы для одного пользователя сериализуются.
	Mutate(ctx context.Context, userID, source string, fn func(*UserProgress) error) (*UserProgress, error)

	// ListUserIDs возвращает идентификаторы всех пользователей,
	// у которых есть запись прогресса.
	ListUserIDs(ctx context.Context) ([]string, error)

	// TopByXP возвращает пользователей с наибольшим XP.
	TopByXP(ctx context.Context, limit int) ([]*UserProgress, error)

	// Count возвращает количество записей прогресса.
	Count(ctx context.Context) (int, error)
}

// LedgerEntry - одна запись журнала начислений XP.
// Журнал только дополняется, записи никогда не изменяются.
type LedgerEntry struct {
	// ID - порядковый номер записи.
	ID int64

	// UserID - идентификатор пользователя.
	UserID string

	// Delta - начисленный XP (неотрицательный).
	Delta int

	// XPAfter - суммарный XP после начисления.
	XPAfter int

	// LevelAfter - уровень после начисления.
	LevelAfter int

	// Source - источник начисления (например, "puzzle").
	Source string

	// CreatedAt - когда начисление произошло.
	CreatedAt time.Time
}

// HistoryRepository определяет чтение журнала начислений.
// Записи журнала создаёт реализация Repository.Mutate.
type HistoryRepository interface {
	// History возвращает последние начисления пользователя,
	// новые первыми.
	History(ctx context.Context, userID string, limit int) ([]*LedgerEntry, error)
}

// Cache определяет операции кеширования прогресса.
// Реализуется поверх Redis; промах кеша не считается ошибкой домена.
type Cache interface {
	// Get получает прогресс пользователя из кеша.
	// Возвращает shared.ErrProgressNotFound при промахе.
	Get(ctx context.Context, userID string) (*UserProgress, error)

	// Set сохраняет прогресс пользователя в кеш.
	Set(ctx context.Context, p *UserProgress, ttl time.Duration) error

	// Invalidate удаляет кешированный прогресс пользователя.
	Invalidate(ctx context.Context, userID string) error
}

// CacheInvalidator - узкий срез Cache для обработчиков записи,
// которым нужен только сброс.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}
