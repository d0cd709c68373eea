package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
	"github.com/brainspark/brainspark-engine/pkg/timeutil"
)

func streakHandlerAt(repo *fakeStreakRepo, bus *fakeEventBus, instant time.Time) *RecordStreakActivityHandler {
	return NewRecordStreakActivityHandler(repo, timeutil.FixedClock{Instant: instant}, 7, bus)
}

func TestRecordStreakActivityHandler_FirstActivity(t *testing.T) {
	repo := newFakeStreakRepo()
	bus := &fakeEventBus{}
	h := streakHandlerAt(repo, bus, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	result, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, streak.OutcomeStarted, result.Outcome)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Len(t, bus.byType(shared.EventStreakExtended), 1)
}

func TestRecordStreakActivityHandler_SameDayIdempotent(t *testing.T) {
	repo := newFakeStreakRepo()
	bus := &fakeEventBus{}
	h := streakHandlerAt(repo, bus, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))

	_, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)

	// Later the same day.
	h2 := streakHandlerAt(repo, bus, time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC))
	result, err := h2.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, streak.OutcomeUnchanged, result.Outcome)
	assert.Equal(t, 1, result.CurrentStreak)
	assert.Len(t, bus.byType(shared.EventStreakExtended), 1)
}

func TestRecordStreakActivityHandler_NextDayExtends(t *testing.T) {
	repo := newFakeStreakRepo()
	bus := &fakeEventBus{}

	h := streakHandlerAt(repo, bus, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	_, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)

	h2 := streakHandlerAt(repo, bus, time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC))
	result, err := h2.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, streak.OutcomeExtended, result.Outcome)
	assert.Equal(t, 2, result.CurrentStreak)
}

func TestRecordStreakActivityHandler_GapResetsAndEmitsBroken(t *testing.T) {
	repo := newFakeStreakRepo()
	bus := &fakeEventBus{}

	h := streakHandlerAt(repo, bus, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	_, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)

	h2 := streakHandlerAt(repo, bus, time.Date(2026, 3, 13, 12, 0, 0, 0, time.UTC))
	result, err := h2.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, streak.OutcomeReset, result.Outcome)
	assert.Equal(t, 1, result.CurrentStreak)

	broken := bus.byType(shared.EventStreakBroken)
	assert.Len(t, broken, 1)
}

func TestRecordStreakActivityHandler_TimezoneDecidesDayBoundary(t *testing.T) {
	// 2026-03-10 23:30 UTC is already 2026-03-11 in Almaty (UTC+5).
	instant := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	repoUTC := newFakeStreakRepo()
	hUTC := streakHandlerAt(repoUTC, &fakeEventBus{}, instant)
	_, err := hUTC.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1", Timezone: "UTC"})
	assert.NoError(t, err)
	stateUTC, err := repoUTC.GetByUserID(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-10", stateUTC.LastActivityDate.String())

	repoAlmaty := newFakeStreakRepo()
	hAlmaty := streakHandlerAt(repoAlmaty, &fakeEventBus{}, instant)
	_, err = hAlmaty.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1", Timezone: "Asia/Almaty"})
	assert.NoError(t, err)
	stateAlmaty, err := repoAlmaty.GetByUserID(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-11", stateAlmaty.LastActivityDate.String())
}

func TestRecordStreakActivityHandler_UnknownTimezoneRejected(t *testing.T) {
	repo := newFakeStreakRepo()
	h := streakHandlerAt(repo, &fakeEventBus{}, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	_, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1", Timezone: "Not/AZone"})
	assert.ErrorIs(t, err, shared.ErrInvalidTimezone)

	// Empty timezone stays valid and resolves to UTC.
	result, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.CurrentStreak)
}

func TestRecordStreakActivityHandler_MilestoneEmitsEvent(t *testing.T) {
	repo := newFakeStreakRepo()
	bus := &fakeEventBus{}

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		h := streakHandlerAt(repo, bus, start.AddDate(0, 0, i))
		result, err := h.Handle(context.Background(), RecordStreakActivityCommand{UserID: "u1"})
		assert.NoError(t, err)
		if i == 6 {
			assert.Equal(t, 7, result.MilestoneReached)
		} else {
			assert.Equal(t, 0, result.MilestoneReached)
		}
	}

	milestones := bus.byType(shared.EventStreakMilestone)
	assert.Len(t, milestones, 1)
}

func TestRecordStreakActivityHandler_MissingUserIDRejected(t *testing.T) {
	h := streakHandlerAt(newFakeStreakRepo(), &fakeEventBus{}, time.Now())

	_, err := h.Handle(context.Background(), RecordStreakActivityCommand{})
	assert.Error(t, err)
}
