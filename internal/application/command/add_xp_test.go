package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

func newAddXPHandler(repo *fakeProgressRepo, bus *fakeEventBus) *AddXPHandler {
	return NewAddXPHandler(repo, progression.NewCalculator(500), nil, bus)
}

func TestAddXPHandler_LazyCreatesUser(t *testing.T) {
	repo := newFakeProgressRepo()
	bus := &fakeEventBus{}
	h := newAddXPHandler(repo, bus)

	result, err := h.Handle(context.Background(), AddXPCommand{UserID: "u1", Amount: 100, Source: "quiz"})
	assert.NoError(t, err)
	assert.Equal(t, 100, result.XP)
	assert.Equal(t, 1, result.Level)
	assert.False(t, result.LeveledUp)
	assert.Equal(t, 500, result.NextLevelThreshold)

	stored, err := repo.GetByUserID(context.Background(), "u1")
	assert.NoError(t, err)
	assert.Equal(t, 100, stored.XP)
}

func TestAddXPHandler_SourceRecordedInLedger(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newAddXPHandler(repo, &fakeEventBus{})
	ctx := context.Background()

	_, err := h.Handle(ctx, AddXPCommand{UserID: "u1", Amount: 100, Source: "quiz"})
	assert.NoError(t, err)
	_, err = h.Handle(ctx, AddXPCommand{UserID: "u1", Amount: 100, Source: "streak_milestone"})
	assert.NoError(t, err)

	// Every grant lands in the ledger attributed to its source.
	assert.Len(t, repo.ledger, 2)
	assert.Equal(t, "quiz", repo.ledger[0].Source)
	assert.Equal(t, "streak_milestone", repo.ledger[1].Source)
	assert.Equal(t, 200, repo.ledger[1].XPAfter)
}

func TestAddXPHandler_LevelUpEmitsEvent(t *testing.T) {
	repo := newFakeProgressRepo()
	bus := &fakeEventBus{}
	h := newAddXPHandler(repo, bus)

	_, err := h.Handle(context.Background(), AddXPCommand{UserID: "u1", Amount: 450})
	assert.NoError(t, err)

	result, err := h.Handle(context.Background(), AddXPCommand{UserID: "u1", Amount: 100})
	assert.NoError(t, err)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, 2, result.Level)

	levelUps := bus.byType(shared.EventLevelUp)
	assert.Len(t, levelUps, 1)
	gained := bus.byType(shared.EventXPGained)
	assert.Len(t, gained, 2)
}

func TestAddXPHandler_AccumulatesAcrossCalls(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newAddXPHandler(repo, &fakeEventBus{})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := h.Handle(ctx, AddXPCommand{UserID: "u1", Amount: 300})
		assert.NoError(t, err)
	}

	stored, err := repo.GetByUserID(ctx, "u1")
	assert.NoError(t, err)
	assert.Equal(t, 1500, stored.XP)
	assert.Equal(t, 4, stored.Level)
}

func TestAddXPHandler_NegativeAmountRejected(t *testing.T) {
	repo := newFakeProgressRepo()
	h := newAddXPHandler(repo, &fakeEventBus{})

	_, err := h.Handle(context.Background(), AddXPCommand{UserID: "u1", Amount: -10})
	assert.ErrorIs(t, err, shared.ErrNegativeValue)

	// Nothing was created.
	_, err = repo.GetByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddXPHandler_MissingUserIDRejected(t *testing.T) {
	h := newAddXPHandler(newFakeProgressRepo(), &fakeEventBus{})

	_, err := h.Handle(context.Background(), AddXPCommand{Amount: 10})
	assert.Error(t, err)
}

func TestAddXPHandler_ZeroAmountNoGainEvent(t *testing.T) {
	bus := &fakeEventBus{}
	h := newAddXPHandler(newFakeProgressRepo(), bus)

	result, err := h.Handle(context.Background(), AddXPCommand{UserID: "u1", Amount: 0})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.XP)
	assert.Empty(t, bus.byType(shared.EventXPGained))
}
