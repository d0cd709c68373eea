package progression

import (
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER PROGRESS ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// UserProgress представляет накопленный прогресс одного пользователя.
// Инвариант: Level всегда выводится из XP текущим калькулятором,
// XP никогда не отрицателен и никогда не уменьшается.
type UserProgress struct {
	// UserID - идентификатор пользователя.
	UserID string

	// XP - накопленный опыт.
	XP int

	// Level - текущий уровень, производный от XP.
	Level int

	// CreatedAt - когда запись создана.
	CreatedAt time.Time

	// UpdatedAt - когда запись последний раз изменялась.
	UpdatedAt time.Time
}

// NewUserProgress создаёт запись прогресса с нулевым XP и уровнем 1.
// Так выглядит лениво созданная запись для нового пользователя.
func NewUserProgress(userID string) *UserProgress {
	now := time.Now().UTC()
	return &UserProgress{
		UserID:    userID,
		XP:        0,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddResult описывает результат начисления XP.
type AddResult struct {
	// PreviousLevel - уровень до начисления.
	PreviousLevel int

	// NewLevel - уровень после начисления.
	NewLevel int

	// NewXP - суммарный XP после начисления.
	NewXP int

	// LeveledUp - true, если начисление пересекло границу уровня.
	LeveledUp bool

	// NextLevelThreshold - суммарный XP до следующего уровня.
	NextLevelThreshold int
}

// AddXP начисляет amount XP и пересчитывает уровень.
// Отрицательный amount отклоняется; нулевой допустим и
// означает пересчёт без изменения суммы.
func (p *UserProgress) AddXP(amount int, calc *Calculator) (AddResult, error) {
	if amount < 0 {
		return AddResult{}, shared.ErrNegativeXP
	}

	previousLevel := p.Level

	p.XP += amount
	p.Level = calc.LevelForXP(p.XP)
	p.UpdatedAt = time.Now().UTC()

	return AddResult{
		PreviousLevel:      previousLevel,
		NewLevel:           p.Level,
		NewXP:              p.XP,
		LeveledUp:          p.Level > previousLevel,
		NextLevelThreshold: calc.NextLevelThreshold(p.Level),
	}, nil
}

// Recalculate пересчитывает уровень из XP. Используется после
// загрузки из хранилища, чтобы уровень не расходился с XP.
func (p *UserProgress) Recalculate(calc *Calculator) {
	p.Level = calc.LevelForXP(p.XP)
}
