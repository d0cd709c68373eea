package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

func TestCreateBadgeHandler_CreatesBadge(t *testing.T) {
	repo := newFakeBadgeRepo()
	bus := &fakeEventBus{}
	h := NewCreateBadgeHandler(repo, bus)

	b, err := h.Handle(context.Background(), CreateBadgeCommand{
		Title:       "Bronze",
		Description: "First steps",
		XPThreshold: 0,
		Rank:        1,
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "Bronze", b.Title)
	assert.True(t, b.Active)
	assert.Len(t, bus.byType(shared.EventBadgeCreated), 1)
}

func TestCreateBadgeHandler_DuplicateTitleConflicts(t *testing.T) {
	repo := newFakeBadgeRepo()
	h := NewCreateBadgeHandler(repo, &fakeEventBus{})

	_, err := h.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", Rank: 1})
	assert.NoError(t, err)

	_, err = h.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", Rank: 2})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCreateBadgeHandler_DuplicateActiveRankConflicts(t *testing.T) {
	repo := newFakeBadgeRepo()
	h := NewCreateBadgeHandler(repo, &fakeEventBus{})

	_, err := h.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", Rank: 1})
	assert.NoError(t, err)

	_, err = h.Handle(context.Background(), CreateBadgeCommand{Title: "Copper", Rank: 1})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCreateBadgeHandler_InvalidBadgeRejected(t *testing.T) {
	h := NewCreateBadgeHandler(newFakeBadgeRepo(), &fakeEventBus{})

	_, err := h.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", Rank: 0})
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)

	_, err = h.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", XPThreshold: -1, Rank: 1})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)
}

func TestUpdateBadgeHandler_PartialUpdate(t *testing.T) {
	repo := newFakeBadgeRepo()
	create := NewCreateBadgeHandler(repo, &fakeEventBus{})
	b, err := create.Handle(context.Background(), CreateBadgeCommand{
		Title:       "Bronze",
		Description: "original",
		XPThreshold: 100,
		Rank:        1,
	})
	assert.NoError(t, err)

	bus := &fakeEventBus{}
	update := NewUpdateBadgeHandler(repo, bus)

	newThreshold := 250
	updated, err := update.Handle(context.Background(), UpdateBadgeCommand{
		BadgeID:     b.ID,
		XPThreshold: &newThreshold,
	})
	assert.NoError(t, err)

	// Untouched fields survive the update.
	assert.Equal(t, 250, updated.XPThreshold)
	assert.Equal(t, "Bronze", updated.Title)
	assert.Equal(t, "original", updated.Description)
	assert.Equal(t, 1, updated.Rank)
	assert.Len(t, bus.byType(shared.EventBadgeUpdated), 1)
}

func TestUpdateBadgeHandler_NotFound(t *testing.T) {
	h := NewUpdateBadgeHandler(newFakeBadgeRepo(), &fakeEventBus{})

	title := "Renamed"
	_, err := h.Handle(context.Background(), UpdateBadgeCommand{BadgeID: "missing", Title: &title})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateBadgeHandler_NoFieldsRejected(t *testing.T) {
	h := NewUpdateBadgeHandler(newFakeBadgeRepo(), &fakeEventBus{})

	_, err := h.Handle(context.Background(), UpdateBadgeCommand{BadgeID: "b1"})
	assert.Error(t, err)
}

func TestUpdateBadgeHandler_RankConflict(t *testing.T) {
	repo := newFakeBadgeRepo()
	create := NewCreateBadgeHandler(repo, &fakeEventBus{})

	_, err := create.Handle(context.Background(), CreateBadgeCommand{Title: "Bronze", Rank: 1})
	assert.NoError(t, err)
	silver, err := create.Handle(context.Background(), CreateBadgeCommand{Title: "Silver", Rank: 2})
	assert.NoError(t, err)

	update := NewUpdateBadgeHandler(repo, &fakeEventBus{})
	conflictRank := 1
	_, err = update.Handle(context.Background(), UpdateBadgeCommand{BadgeID: silver.ID, Rank: &conflictRank})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}
