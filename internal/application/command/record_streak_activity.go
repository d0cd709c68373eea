package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
	"github.com/brainspark/brainspark-engine/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD STREAK ACTIVITY COMMAND
// Marks the user active for today in their own timezone and advances the
// streak state machine: same day is a no-op, the day after the last
// activity extends the streak, anything else resets it to 1.
// ══════════════════════════════════════════════════════════════════════════════

// RecordStreakActivityCommand contains the data to record daily activity.
type RecordStreakActivityCommand struct {
	// UserID is the user who was active.
	UserID string

	// Timezone is the user's IANA timezone. Empty means UTC; an
	// unknown name is rejected during validation.
	Timezone string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordStreakActivityCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_streak_activity: user_id is required")
	}
	if _, err := shared.NewTimezone(c.Timezone); err != nil {
		return err
	}
	return nil
}

// RecordStreakActivityResult contains the outcome of recording activity.
type RecordStreakActivityResult struct {
	// UserID is the user the activity was recorded for.
	UserID string

	// Outcome describes what happened to the streak.
	Outcome streak.Outcome

	// CurrentStreak is the streak after recording.
	CurrentStreak int

	// LongestStreak is the best streak after recording.
	LongestStreak int

	// MilestoneReached is the milestone hit by this activity (0 = none).
	MilestoneReached int

	// Events contains domain events generated.
	Events []shared.Event
}

// RecordStreakActivityHandler handles the RecordStreakActivityCommand.
type RecordStreakActivityHandler struct {
	streakRepo        streak.Repository
	clock             timeutil.Clock
	milestoneInterval int
	eventPublisher    shared.EventPublisher
}

// NewRecordStreakActivityHandler creates a new handler.
func NewRecordStreakActivityHandler(
	streakRepo streak.Repository,
	clock timeutil.Clock,
	milestoneInterval int,
	eventPublisher shared.EventPublisher,
) *RecordStreakActivityHandler {
	if milestoneInterval <= 0 {
		milestoneInterval = streak.DefaultMilestoneInterval
	}
	return &RecordStreakActivityHandler{
		streakRepo:        streakRepo,
		clock:             clock,
		milestoneInterval: milestoneInterval,
		eventPublisher:    eventPublisher,
	}
}

// Handle executes the record streak activity command.
func (h *RecordStreakActivityHandler) Handle(
	ctx context.Context,
	cmd RecordStreakActivityCommand,
) (*RecordStreakActivityResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_streak_activity: validation failed: %w", err)
	}

	// Calendar dates in the user's timezone; day boundaries are local
	// midnights, not rolling 24h windows.
	today := timeutil.DateIn(h.clock, cmd.Timezone, 0)
	yesterday := timeutil.DateIn(h.clock, cmd.Timezone, -1)

	var recordResult streak.RecordResult
	_, err := h.streakRepo.Mutate(ctx, cmd.UserID, func(s *streak.State) error {
		recordResult = s.RecordActivity(today, yesterday, h.milestoneInterval)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record_streak_activity: failed to update streak: %w", err)
	}

	result := &RecordStreakActivityResult{
		UserID:           cmd.UserID,
		Outcome:          recordResult.Outcome,
		CurrentStreak:    recordResult.CurrentStreak,
		LongestStreak:    recordResult.LongestStreak,
		MilestoneReached: recordResult.MilestoneReached,
		Events:           make([]shared.Event, 0, 2),
	}

	switch recordResult.Outcome {
	case streak.OutcomeStarted, streak.OutcomeExtended:
		event := shared.NewStreakExtendedEvent(cmd.UserID, recordResult.CurrentStreak, recordResult.LongestStreak)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
	case streak.OutcomeReset:
		event := shared.NewStreakBrokenEvent(cmd.UserID, recordResult.PreviousStreak)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
	}

	if recordResult.MilestoneReached > 0 {
		event := shared.NewStreakMilestoneEvent(cmd.UserID, recordResult.MilestoneReached, recordResult.CurrentStreak)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
	}

	for _, event := range result.Events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
