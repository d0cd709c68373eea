package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUIZ SESSION QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// QuizSessionDTO - DTO сессии викторины.
type QuizSessionDTO struct {
	// ID - идентификатор сессии.
	ID string `json:"id"`

	// UserID - идентификатор пользователя.
	UserID string `json:"user_id"`

	// QuestionIDs - вопросы в порядке показа.
	QuestionIDs []string `json:"question_ids"`

	// CreatedAt - когда сессия собрана.
	CreatedAt time.Time `json:"created_at"`
}

// GetQuizSessionQuery содержит параметры запроса сессии.
type GetQuizSessionQuery struct {
	// SessionID - идентификатор сессии.
	SessionID string
}

// Validate проверяет корректность параметров.
func (q GetQuizSessionQuery) Validate() error {
	if q.SessionID == "" {
		return errors.New("get_quiz_session: session_id is required")
	}
	return nil
}

// GetQuizSessionHandler обрабатывает GetQuizSessionQuery.
type GetQuizSessionHandler struct {
	sessionRepo quiz.SessionRepository
}

// NewGetQuizSessionHandler создаёт обработчик.
func NewGetQuizSessionHandler(sessionRepo quiz.SessionRepository) *GetQuizSessionHandler {
	return &GetQuizSessionHandler{sessionRepo: sessionRepo}
}

// Handle выполняет запрос сессии.
func (h *GetQuizSessionHandler) Handle(ctx context.Context, q GetQuizSessionQuery) (*QuizSessionDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	rec, err := h.sessionRepo.GetByID(ctx, q.SessionID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get_quiz_session: %w", err)
	}

	return &QuizSessionDTO{
		ID:          rec.ID,
		UserID:      rec.UserID,
		QuestionIDs: rec.QuestionIDs,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIST USER SESSIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListUserSessionsQuery содержит параметры запроса истории сессий.
type ListUserSessionsQuery struct {
	// UserID - идентификатор пользователя.
	UserID string

	// Limit - сколько сессий вернуть (по умолчанию 20).
	Limit int
}

// Validate проверяет и нормализует параметры.
func (q *ListUserSessionsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("list_user_sessions: user_id is required")
	}
	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	return nil
}

// ListUserSessionsHandler обрабатывает ListUserSessionsQuery.
type ListUserSessionsHandler struct {
	sessionRepo quiz.SessionRepository
}

// NewListUserSessionsHandler создаёт обработчик.
func NewListUserSessionsHandler(sessionRepo quiz.SessionRepository) *ListUserSessionsHandler {
	return &ListUserSessionsHandler{sessionRepo: sessionRepo}
}

// Handle выполняет запрос истории сессий, от новых к старым.
func (h *ListUserSessionsHandler) Handle(ctx context.Context, q ListUserSessionsQuery) ([]*QuizSessionDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sessions, err := h.sessionRepo.ListByUser(ctx, q.UserID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("list_user_sessions: %w", err)
	}

	out := make([]*QuizSessionDTO, 0, len(sessions))
	for _, rec := range sessions {
		out = append(out, &QuizSessionDTO{
			ID:          rec.ID,
			UserID:      rec.UserID,
			QuestionIDs: rec.QuestionIDs,
			CreatedAt:   rec.CreatedAt,
		})
	}
	return out, nil
}
