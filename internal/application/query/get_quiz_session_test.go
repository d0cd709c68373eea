package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

func TestGetQuizSessionHandler_ReturnsSession(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.put(quiz.NewSessionRecord("sess-1", "user-1", []string{"q3", "q1", "q2"}))

	handler := NewGetQuizSessionHandler(sessionRepo)

	dto, err := handler.Handle(context.Background(), GetQuizSessionQuery{SessionID: "sess-1"})

	require.NoError(t, err)
	assert.Equal(t, "sess-1", dto.ID)
	assert.Equal(t, "user-1", dto.UserID)
	// Порядок показа вопросов сохраняется как есть.
	assert.Equal(t, []string{"q3", "q1", "q2"}, dto.QuestionIDs)
}

func TestGetQuizSessionHandler_NotFound(t *testing.T) {
	handler := NewGetQuizSessionHandler(newFakeSessionRepo())

	dto, err := handler.Handle(context.Background(), GetQuizSessionQuery{SessionID: "missing"})

	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
	assert.Nil(t, dto)
}

func TestGetQuizSessionHandler_Validation(t *testing.T) {
	handler := NewGetQuizSessionHandler(newFakeSessionRepo())

	_, err := handler.Handle(context.Background(), GetQuizSessionQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "session_id is required")
}

func TestListUserSessionsHandler_NewestFirst(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.put(quiz.NewSessionRecord("sess-1", "user-1", []string{"q1"}))
	sessionRepo.put(quiz.NewSessionRecord("sess-2", "user-1", []string{"q2"}))
	sessionRepo.put(quiz.NewSessionRecord("sess-3", "user-2", []string{"q3"}))

	handler := NewListUserSessionsHandler(sessionRepo)

	dtos, err := handler.Handle(context.Background(), ListUserSessionsQuery{UserID: "user-1"})

	require.NoError(t, err)
	require.Len(t, dtos, 2)
	assert.Equal(t, "sess-2", dtos[0].ID)
	assert.Equal(t, "sess-1", dtos[1].ID)
}

func TestListUserSessionsHandler_LimitApplied(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		sessionRepo.put(quiz.NewSessionRecord(id, "user-1", []string{"q1"}))
	}

	handler := NewListUserSessionsHandler(sessionRepo)

	dtos, err := handler.Handle(context.Background(), ListUserSessionsQuery{UserID: "user-1", Limit: 2})

	require.NoError(t, err)
	assert.Len(t, dtos, 2)
}

func TestListUserSessionsHandler_EmptyHistoryIsNotAnError(t *testing.T) {
	handler := NewListUserSessionsHandler(newFakeSessionRepo())

	dtos, err := handler.Handle(context.Background(), ListUserSessionsQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Empty(t, dtos)
}

func TestListUserSessionsHandler_Validation(t *testing.T) {
	handler := NewListUserSessionsHandler(newFakeSessionRepo())

	_, err := handler.Handle(context.Background(), ListUserSessionsQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id is required")
}

func TestListUserSessionsHandler_RepositoryError(t *testing.T) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.err = errors.New("connection reset")

	handler := NewListUserSessionsHandler(sessionRepo)

	_, err := handler.Handle(context.Background(), ListUserSessionsQuery{UserID: "user-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
