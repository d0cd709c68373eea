package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGE CATALOG COMMANDS
// Create and update badge definitions. Title and active-rank uniqueness
// is enforced by the storage layer and surfaces here as conflict errors.
// ══════════════════════════════════════════════════════════════════════════════

// CreateBadgeCommand contains the data to create a badge definition.
type CreateBadgeCommand struct {
	Title       string
	Description string
	XPThreshold int
	Rank        int
}

// Validate validates the command.
func (c CreateBadgeCommand) Validate() error {
	if c.Title == "" {
		return errors.New("create_badge: title is required")
	}
	return nil
}

// CreateBadgeHandler handles the CreateBadgeCommand.
type CreateBadgeHandler struct {
	badgeRepo      badge.Repository
	eventPublisher shared.EventPublisher
}

// NewCreateBadgeHandler creates a new CreateBadgeHandler.
func NewCreateBadgeHandler(badgeRepo badge.Repository, eventPublisher shared.EventPublisher) *CreateBadgeHandler {
	return &CreateBadgeHandler{badgeRepo: badgeRepo, eventPublisher: eventPublisher}
}

// Handle executes the create badge command.
func (h *CreateBadgeHandler) Handle(ctx context.Context, cmd CreateBadgeCommand) (*badge.Badge, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("create_badge: validation failed: %w", err)
	}

	b, err := badge.NewBadge(uuid.NewString(), cmd.Title, cmd.Description, cmd.XPThreshold, cmd.Rank)
	if err != nil {
		return nil, fmt.Errorf("create_badge: %w", err)
	}

	if err := h.badgeRepo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create_badge: failed to store badge: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewBadgeCatalogEvent(shared.EventBadgeCreated, b.ID))

	return b, nil
}

// UpdateBadgeCommand contains a partial badge update. Nil fields are
// left untouched.
type UpdateBadgeCommand struct {
	BadgeID     string
	Title       *string
	Description *string
	XPThreshold *int
	Rank        *int
	Active      *bool
}

// Validate validates the command.
func (c UpdateBadgeCommand) Validate() error {
	if c.BadgeID == "" {
		return errors.New("update_badge: badge_id is required")
	}
	if c.Title == nil && c.Description == nil && c.XPThreshold == nil && c.Rank == nil && c.Active == nil {
		return errors.New("update_badge: no fields to update")
	}
	return nil
}

// UpdateBadgeHandler handles the UpdateBadgeCommand.
type UpdateBadgeHandler struct {
	badgeRepo      badge.Repository
	eventPublisher shared.EventPublisher
}

// NewUpdateBadgeHandler creates a new UpdateBadgeHandler.
func NewUpdateBadgeHandler(badgeRepo badge.Repository, eventPublisher shared.EventPublisher) *UpdateBadgeHandler {
	return &UpdateBadgeHandler{badgeRepo: badgeRepo, eventPublisher: eventPublisher}
}

// Handle executes the update badge command. The definition is read
// first and the provided fields are merged in, so omitted fields are
// never zeroed by accident.
func (h *UpdateBadgeHandler) Handle(ctx context.Context, cmd UpdateBadgeCommand) (*badge.Badge, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("update_badge: validation failed: %w", err)
	}

	b, err := h.badgeRepo.GetByID(ctx, cmd.BadgeID)
	if err != nil {
		return nil, fmt.Errorf("update_badge: failed to load badge: %w", err)
	}

	err = b.ApplyUpdate(badge.UpdateParams{
		Title:       cmd.Title,
		Description: cmd.Description,
		XPThreshold: cmd.XPThreshold,
		Rank:        cmd.Rank,
		Active:      cmd.Active,
	})
	if err != nil {
		return nil, fmt.Errorf("update_badge: %w", err)
	}

	if err := h.badgeRepo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update_badge: failed to store badge: %w", err)
	}

	_ = h.eventPublisher.Publish(shared.NewBadgeCatalogEvent(shared.EventBadgeUpdated, b.ID))

	return b, nil
}
