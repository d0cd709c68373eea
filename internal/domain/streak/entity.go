package streak

import (
	"time"

	"github.com/brainspark/brainspark-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK STATE
// Серия считается по календарным датам в часовом поясе пользователя,
// а не по 24-часовым интервалам.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultMilestoneInterval - интервал вех серии по умолчанию (каждые 7 дней).
const DefaultMilestoneInterval = 7

// State представляет состояние серии одного пользователя.
type State struct {
	// UserID - идентификатор пользователя.
	UserID string

	// CurrentStreak - текущая серия дней.
	CurrentStreak int

	// LongestStreak - лучшая серия за всё время. Никогда не уменьшается.
	LongestStreak int

	// LastActivityDate - календарная дата последней активности
	// в часовом поясе пользователя. Нулевая дата - активности не было.
	LastActivityDate timeutil.Date

	// LastMilestoneReached - последняя достигнутая веха (0 - вех не было).
	// Защищает от повторного срабатывания вехи в тот же день.
	LastMilestoneReached int

	// UpdatedAt - когда запись последний раз изменялась.
	UpdatedAt time.Time
}

// NewState создаёт пустое состояние серии для пользователя.
func NewState(userID string) *State {
	return &State{
		UserID:               userID,
		CurrentStreak:        0,
		LongestStreak:        0,
		LastActivityDate:     timeutil.Date{},
		LastMilestoneReached: 0,
		UpdatedAt:            time.Now().UTC(),
	}
}

// Outcome описывает результат фиксации активности.
type Outcome string

const (
	// OutcomeStarted - первая активность, серия началась с 1.
	OutcomeStarted Outcome = "started"

	// OutcomeExtended - активность на следующий день, серия выросла.
	OutcomeExtended Outcome = "extended"

	// OutcomeUnchanged - повторная активность в тот же день, без изменений.
	OutcomeUnchanged Outcome = "unchanged"

	// OutcomeReset - пропуск дней, серия сброшена до 1.
	OutcomeReset Outcome = "reset"
)

// RecordResult описывает итог RecordActivity.
type RecordResult struct {
	// Outcome - что произошло с серией.
	Outcome Outcome

	// CurrentStreak - серия после фиксации.
	CurrentStreak int

	// LongestStreak - лучшая серия после фиксации.
	LongestStreak int

	// PreviousStreak - серия до фиксации (для события о сбросе).
	PreviousStreak int

	// MilestoneReached - достигнутая веха (0 - вехи нет).
	MilestoneReached int
}

// RecordActivity фиксирует активность за дату today; yesterday -
// предыдущая календарная дата в том же поясе. Обе даты вычисляет
// вызывающая сторона через timeutil.DateIn, здесь только переходы:
//
//	та же дата     -> без изменений (идемпотентно)
//	вчерашняя дата -> серия +1
//	иначе          -> сброс до 1
//
// LongestStreak подтягивается до CurrentStreak и никогда не уменьшается.
func (s *State) RecordActivity(today, yesterday timeutil.Date, milestoneInterval int) RecordResult {
	if milestoneInterval <= 0 {
		milestoneInterval = DefaultMilestoneInterval
	}

	previous := s.CurrentStreak

	var outcome Outcome
	switch {
	case s.LastActivityDate.IsZero():
		s.CurrentStreak = 1
		outcome = OutcomeStarted
	case s.LastActivityDate.Equal(today):
		// Повторный вызов за тот же день - ничего не меняем.
		return RecordResult{
			Outcome:        OutcomeUnchanged,
			CurrentStreak:  s.CurrentStreak,
			LongestStreak:  s.LongestStreak,
			PreviousStreak: previous,
		}
	case s.LastActivityDate.Equal(yesterday):
		s.CurrentStreak++
		outcome = OutcomeExtended
	default:
		// Пропущен хотя бы один день (или дата из будущего
		// относительно прошлой активности) - серия начинается заново.
		s.CurrentStreak = 1
		s.LastMilestoneReached = 0
		outcome = OutcomeReset
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastActivityDate = today
	s.UpdatedAt = time.Now().UTC()

	result := RecordResult{
		Outcome:        outcome,
		CurrentStreak:  s.CurrentStreak,
		LongestStreak:  s.LongestStreak,
		PreviousStreak: previous,
	}

	// Веха срабатывает только при росте серии и только один раз
	// на каждое кратное значение.
	if (outcome == OutcomeExtended || outcome == OutcomeStarted) &&
		s.CurrentStreak%milestoneInterval == 0 &&
		s.CurrentStreak > s.LastMilestoneReached {
		s.LastMilestoneReached = s.CurrentStreak
		result.MilestoneReached = s.CurrentStreak
	}

	return result
}

// IsBroken проверяет, сломана ли серия на дату today: последняя
// активность была раньше вчерашнего дня.
func (s *State) IsBroken(today, yesterday timeutil.Date) bool {
	if s.LastActivityDate.IsZero() || s.CurrentStreak == 0 {
		return false
	}
	return s.LastActivityDate.Before(yesterday)
}
