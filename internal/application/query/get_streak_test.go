package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
	"github.com/brainspark/brainspark-engine/pkg/timeutil"
)

func fixedClock(t time.Time) timeutil.Clock {
	return timeutil.FixedClock{Instant: t}
}

func TestGetStreak_Existing(t *testing.T) {
	repo := newFakeStreakRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s := streak.NewState("user-1")
	s.CurrentStreak = 6
	s.LongestStreak = 9
	s.LastActivityDate = timeutil.Date{Year: 2025, Month: time.March, Day: 10}
	repo.put(s)

	h := NewGetStreakHandler(repo, fixedClock(now))
	dto, err := h.Handle(context.Background(), GetStreakQuery{UserID: "user-1", Timezone: "UTC"})
	require.NoError(t, err)

	assert.Equal(t, 6, dto.CurrentStreak)
	assert.Equal(t, 9, dto.LongestStreak)
	assert.Equal(t, "2025-03-10", dto.LastActivityDate)
	assert.False(t, dto.IsBroken)
}

func TestGetStreak_BrokenWhenActivityTooOld(t *testing.T) {
	repo := newFakeStreakRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s := streak.NewState("user-1")
	s.CurrentStreak = 4
	s.LongestStreak = 4
	s.LastActivityDate = timeutil.Date{Year: 2025, Month: time.March, Day: 7}
	repo.put(s)

	h := NewGetStreakHandler(repo, fixedClock(now))
	dto, err := h.Handle(context.Background(), GetStreakQuery{UserID: "user-1", Timezone: "UTC"})
	require.NoError(t, err)

	assert.True(t, dto.IsBroken)
}

func TestGetStreak_MissingUserHasZeroStreak(t *testing.T) {
	repo := newFakeStreakRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	h := NewGetStreakHandler(repo, fixedClock(now))
	dto, err := h.Handle(context.Background(), GetStreakQuery{UserID: "nobody", Timezone: "UTC"})
	require.NoError(t, err)

	assert.Equal(t, 0, dto.CurrentStreak)
	assert.Equal(t, 0, dto.LongestStreak)
	assert.Empty(t, dto.LastActivityDate)
}

func TestGetStreak_EmptyUserID(t *testing.T) {
	h := NewGetStreakHandler(newFakeStreakRepo(), fixedClock(time.Now()))

	_, err := h.Handle(context.Background(), GetStreakQuery{})
	assert.Error(t, err)
}

func TestGetStreak_UnknownTimezoneRejected(t *testing.T) {
	h := NewGetStreakHandler(newFakeStreakRepo(), fixedClock(time.Now()))

	_, err := h.Handle(context.Background(), GetStreakQuery{UserID: "user-1", Timezone: "Not/AZone"})
	assert.ErrorIs(t, err, shared.ErrInvalidTimezone)
}

func TestTopStreaks(t *testing.T) {
	repo := newFakeStreakRepo()

	for _, tc := range []struct {
		userID string
		days   int
	}{
		{"user-1", 3},
		{"user-2", 12},
		{"user-3", 7},
		{"user-4", 0},
	} {
		s := streak.NewState(tc.userID)
		s.CurrentStreak = tc.days
		s.LongestStreak = tc.days
		repo.put(s)
	}

	h := NewTopStreaksHandler(repo)
	top, err := h.Handle(context.Background(), TopStreaksQuery{Limit: 3})
	require.NoError(t, err)

	// Нулевые серии не попадают в топ.
	require.Len(t, top, 3)
	assert.Equal(t, "user-2", top[0].UserID)
	assert.Equal(t, "user-3", top[1].UserID)
	assert.Equal(t, "user-1", top[2].UserID)
}
