// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD XP COMMAND
// Credits XP to a user and recalculates their level. The write happens
// under a row lock inside the repository, so concurrent credits for the
// same user never lose updates. A missing progress row is created lazily.
// ══════════════════════════════════════════════════════════════════════════════

// AddXPCommand contains the data to credit XP.
type AddXPCommand struct {
	// UserID is the user receiving the XP.
	UserID string

	// Amount is the XP to credit. Must be non-negative.
	Amount int

	// Source describes where the XP came from (e.g. "quiz", "lesson").
	Source string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c AddXPCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("add_xp: user_id is required")
	}
	if c.Amount < 0 {
		return shared.ErrNegativeXP
	}
	return nil
}

// AddXPResult contains the outcome of crediting XP.
type AddXPResult struct {
	// UserID is the user the XP was credited to.
	UserID string

	// XP is the new cumulative total.
	XP int

	// Level is the level after the credit.
	Level int

	// LeveledUp indicates the credit crossed a level boundary.
	LeveledUp bool

	// PreviousLevel is the level before the credit.
	PreviousLevel int

	// NextLevelThreshold is the cumulative XP needed for the next level.
	NextLevelThreshold int

	// Events contains domain events generated.
	Events []shared.Event
}

// AddXPHandler handles the AddXPCommand.
type AddXPHandler struct {
	progressRepo   progression.Repository
	calc           *progression.Calculator
	cache          progression.CacheInvalidator
	eventPublisher shared.EventPublisher
}

// NewAddXPHandler creates a new AddXPHandler. The cache invalidator is
// optional; pass nil when no read cache sits in front of the repository.
func NewAddXPHandler(
	progressRepo progression.Repository,
	calc *progression.Calculator,
	cache progression.CacheInvalidator,
	eventPublisher shared.EventPublisher,
) *AddXPHandler {
	return &AddXPHandler{
		progressRepo:   progressRepo,
		calc:           calc,
		cache:          cache,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the add XP command.
func (h *AddXPHandler) Handle(ctx context.Context, cmd AddXPCommand) (*AddXPResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_xp: validation failed: %w", err)
	}

	var addResult progression.AddResult
	_, err := h.progressRepo.Mutate(ctx, cmd.UserID, cmd.Source, func(p *progression.UserProgress) error {
		var err error
		addResult, err = p.AddXP(cmd.Amount, h.calc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("add_xp: failed to credit XP: %w", err)
	}

	result := &AddXPResult{
		UserID:             cmd.UserID,
		XP:                 addResult.NewXP,
		Level:              addResult.NewLevel,
		LeveledUp:          addResult.LeveledUp,
		PreviousLevel:      addResult.PreviousLevel,
		NextLevelThreshold: addResult.NextLevelThreshold,
		Events:             make([]shared.Event, 0, 2),
	}

	if cmd.Amount > 0 {
		event := shared.NewXPGainedEvent(cmd.UserID, cmd.Amount, addResult.NewXP, cmd.Source)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
	}
	if addResult.LeveledUp {
		event := shared.NewLevelUpEvent(
			cmd.UserID,
			addResult.PreviousLevel,
			addResult.NewLevel,
			addResult.NewXP,
			addResult.NextLevelThreshold,
		)
		if cmd.CorrelationID != "" {
			event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		}
		result.Events = append(result.Events, event)
	}

	// Stale cached progress is worse than a cache miss.
	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, cmd.UserID)
	}

	for _, event := range result.Events {
		_ = h.eventPublisher.Publish(event)
	}

	return result, nil
}
