package progression

// ══════════════════════════════════════════════════════════════════════════════
// LEVEL CALCULATOR
// Чистая арифметика уровней. Никаких операций с хранилищем.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLevelStep - количество XP на один уровень по умолчанию.
const DefaultLevelStep = 500

// Calculator вычисляет уровень по накопленному XP.
// Прогрессия линейная: каждые Step XP дают один уровень.
type Calculator struct {
	// Step - количество XP на уровень. Всегда > 0.
	Step int
}

// NewCalculator создаёт калькулятор уровней.
// Неположительный шаг заменяется на DefaultLevelStep.
func NewCalculator(step int) *Calculator {
	if step <= 0 {
		step = DefaultLevelStep
	}
	return &Calculator{Step: step}
}

// LevelForXP возвращает уровень для накопленного XP.
// Уровень = floor(xp / Step) + 1; нулевой XP соответствует уровню 1.
// Отрицательный XP трактуется как 0.
func (c *Calculator) LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/c.Step + 1
}

// NextLevelThreshold возвращает суммарный XP, необходимый для
// перехода на следующий уровень. Для уровня N это Step * N:
// на границе (xp == Step*N) пользователь уже на уровне N+1,
// и порог сразу указывает на следующую границу.
func (c *Calculator) NextLevelThreshold(level int) int {
	if level < 1 {
		level = 1
	}
	return c.Step * level
}

// XPIntoLevel возвращает, сколько XP накоплено внутри текущего уровня.
func (c *Calculator) XPIntoLevel(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp % c.Step
}

// ProgressPercent возвращает процент прогресса до следующего уровня (0-100).
func (c *Calculator) ProgressPercent(xp int) int {
	return (c.XPIntoLevel(xp) * 100) / c.Step
}
