package command

import (
	"context"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGN BADGES COMMAND
// Scans every user with progress and awards the highest-ranked active
// badge their XP qualifies for. Awards only move up in rank, so running
// the sweep twice in a row changes nothing. One user failing never
// stops the sweep for the rest.
// ══════════════════════════════════════════════════════════════════════════════

// AssignBadgesResult aggregates the outcome of one sweep.
type AssignBadgesResult struct {
	// UsersScanned is how many users were evaluated.
	UsersScanned int

	// BadgesAwarded is how many new awards were written.
	BadgesAwarded int

	// UsersFailed is how many users were skipped due to errors.
	UsersFailed int

	// Duration is how long the sweep took.
	Duration time.Duration

	// Errors maps user IDs to the error that skipped them.
	Errors map[string]error
}

// AssignBadgesHandler runs the badge assignment sweep.
type AssignBadgesHandler struct {
	badgeRepo      badge.Repository
	userBadgeRepo  badge.UserBadgeRepository
	progressRepo   progression.Repository
	eventPublisher shared.EventPublisher
	log            *logger.Logger
}

// NewAssignBadgesHandler creates a new AssignBadgesHandler.
func NewAssignBadgesHandler(
	badgeRepo badge.Repository,
	userBadgeRepo badge.UserBadgeRepository,
	progressRepo progression.Repository,
	eventPublisher shared.EventPublisher,
	log *logger.Logger,
) *AssignBadgesHandler {
	return &AssignBadgesHandler{
		badgeRepo:      badgeRepo,
		userBadgeRepo:  userBadgeRepo,
		progressRepo:   progressRepo,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

// Handle executes one badge assignment sweep.
func (h *AssignBadgesHandler) Handle(ctx context.Context) (*AssignBadgesResult, error) {
	started := time.Now()

	catalog, err := h.badgeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign_badges: failed to load badge catalog: %w", err)
	}

	result := &AssignBadgesResult{
		Errors: make(map[string]error),
	}

	if len(catalog) == 0 {
		// Nothing can be awarded; an empty catalog is not an error.
		result.Duration = time.Since(started)
		return result, nil
	}

	userIDs, err := h.progressRepo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign_badges: failed to list users: %w", err)
	}

	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("assign_badges: sweep aborted: %w", err)
		}

		result.UsersScanned++

		awarded, err := h.evaluateUser(ctx, userID, catalog)
		if err != nil {
			result.UsersFailed++
			result.Errors[userID] = err
			h.log.Error("badge evaluation failed, skipping user",
				logger.UserID(userID),
				logger.Err(err),
			)
			continue
		}
		if awarded != nil {
			result.BadgesAwarded++
			h.log.Info("badge awarded",
				logger.UserID(userID),
				logger.BadgeTitle(awarded.Title),
				logger.BadgeRank(awarded.Rank),
			)
		}
	}

	result.Duration = time.Since(started)

	_ = h.eventPublisher.Publish(shared.NewBadgeSweepCompletedEvent(
		result.UsersScanned,
		result.BadgesAwarded,
		result.UsersFailed,
		result.Duration,
	))

	return result, nil
}

// evaluateUser evaluates one user and writes an award when due.
// Returns the awarded badge, or nil when nothing changed.
func (h *AssignBadgesHandler) evaluateUser(
	ctx context.Context,
	userID string,
	catalog []*badge.Badge,
) (*badge.Badge, error) {
	progress, err := h.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	var current *badge.Badge
	_, held, err := h.userBadgeRepo.Get(ctx, userID)
	switch {
	case err == nil:
		current = held
	case shared.IsNotFound(err):
		// First award for this user.
	default:
		return nil, fmt.Errorf("load current badge: %w", err)
	}

	evaluation := badge.Evaluate(catalog, current, progress.XP)
	if !evaluation.ShouldAward() {
		return nil, nil
	}

	award := badge.NewUserBadge(userID, evaluation.Award.ID)
	if err := h.userBadgeRepo.Upsert(ctx, award); err != nil {
		return nil, fmt.Errorf("store award: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewBadgeAwardedEvent(
		userID,
		evaluation.Award.ID,
		evaluation.Award.Title,
		evaluation.Award.Rank,
	))

	return evaluation.Award, nil
}
