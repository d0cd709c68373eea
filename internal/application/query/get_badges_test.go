package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainspark/brainspark-engine/internal/domain/badge"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

func seedBadge(t *testing.T, repo *fakeBadgeRepo, id, title string, threshold, rank int, active bool) *badge.Badge {
	t.Helper()
	b, err := badge.NewBadge(id, title, "", threshold, rank)
	require.NoError(t, err)
	b.Active = active
	repo.put(b)
	return b
}

func TestListBadgesHandler_ActiveOnlyByDefault(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	userBadgeRepo := newFakeUserBadgeRepo(badgeRepo)
	seedBadge(t, badgeRepo, "b-bronze", "Bronze", 500, 1, true)
	seedBadge(t, badgeRepo, "b-silver", "Silver", 2000, 2, true)
	seedBadge(t, badgeRepo, "b-legacy", "Legacy", 100, 9, false)

	handler := NewListBadgesHandler(badgeRepo, userBadgeRepo)

	dtos, err := handler.Handle(context.Background(), ListBadgesQuery{})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	// Каталог отдаётся от старшего ранга к младшему.
	assert.Equal(t, "Silver", dtos[0].Title)
	assert.Equal(t, "Bronze", dtos[1].Title)
}

func TestListBadgesHandler_IncludeInactive(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	userBadgeRepo := newFakeUserBadgeRepo(badgeRepo)
	seedBadge(t, badgeRepo, "b-bronze", "Bronze", 500, 1, true)
	seedBadge(t, badgeRepo, "b-legacy", "Legacy", 100, 9, false)

	handler := NewListBadgesHandler(badgeRepo, userBadgeRepo)

	dtos, err := handler.Handle(context.Background(), ListBadgesQuery{IncludeInactive: true})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "Legacy", dtos[0].Title)
	assert.False(t, dtos[0].Active)
}

func TestListBadgesHandler_HolderCounts(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	userBadgeRepo := newFakeUserBadgeRepo(badgeRepo)
	seedBadge(t, badgeRepo, "b-bronze", "Bronze", 500, 1, true)
	seedBadge(t, badgeRepo, "b-silver", "Silver", 2000, 2, true)

	ctx := context.Background()
	require.NoError(t, userBadgeRepo.Upsert(ctx, badge.NewUserBadge("user-1", "b-bronze")))
	require.NoError(t, userBadgeRepo.Upsert(ctx, badge.NewUserBadge("user-2", "b-bronze")))
	require.NoError(t, userBadgeRepo.Upsert(ctx, badge.NewUserBadge("user-3", "b-silver")))

	handler := NewListBadgesHandler(badgeRepo, userBadgeRepo)

	dtos, err := handler.Handle(ctx, ListBadgesQuery{IncludeHolderCounts: true})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, 1, dtos[0].HolderCount) // Silver
	assert.Equal(t, 2, dtos[1].HolderCount) // Bronze
}

func TestGetUserBadgeHandler_ReturnsHeldBadge(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	userBadgeRepo := newFakeUserBadgeRepo(badgeRepo)
	seedBadge(t, badgeRepo, "b-silver", "Silver", 2000, 2, true)
	require.NoError(t, userBadgeRepo.Upsert(context.Background(), badge.NewUserBadge("user-1", "b-silver")))

	handler := NewGetUserBadgeHandler(userBadgeRepo)

	dto, err := handler.Handle(context.Background(), GetUserBadgeQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, "user-1", dto.UserID)
	assert.Equal(t, "Silver", dto.Badge.Title)
	assert.Equal(t, 2, dto.Badge.Rank)
	assert.False(t, dto.AwardedAt.IsZero())
}

func TestGetUserBadgeHandler_NotFound(t *testing.T) {
	badgeRepo := newFakeBadgeRepo()
	userBadgeRepo := newFakeUserBadgeRepo(badgeRepo)

	handler := NewGetUserBadgeHandler(userBadgeRepo)

	dto, err := handler.Handle(context.Background(), GetUserBadgeQuery{UserID: "nobody"})

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Nil(t, dto)
}

func TestGetUserBadgeHandler_Validation(t *testing.T) {
	handler := NewGetUserBadgeHandler(newFakeUserBadgeRepo(newFakeBadgeRepo()))

	_, err := handler.Handle(context.Background(), GetUserBadgeQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id is required")
}
