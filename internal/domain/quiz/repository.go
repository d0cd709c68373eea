package quiz

import (
	"context"
)

// QuestionRepository defines storage operations for the question pool.
// Implementations live in infrastructure/persistence.
type QuestionRepository interface {
	// Create persists a new question.
	Create(ctx context.Context, q *Question) error

	// GetByID returns a question by ID.
	// Returns shared.ErrQuestionNotFound when absent.
	GetByID(ctx context.Context, id string) (*Question, error)

	// ListIDs returns the IDs of questions matching the filter.
	ListIDs(ctx context.Context, filter PoolFilter) ([]string, error)

	// GetByIDs returns questions for the given IDs, preserving the
	// input order.
	GetByIDs(ctx context.Context, ids []string) ([]*Question, error)
}

// SessionRepository defines storage operations for quiz sessions.
type SessionRepository interface {
	// Create persists a session record.
	Create(ctx context.Context, rec *SessionRecord) error

	// GetByID returns a session by ID.
	// Returns shared.ErrSessionNotFound when absent.
	GetByID(ctx context.Context, id string) (*SessionRecord, error)

	// RecentOrderingKeys returns the ordering keys of the user's most
	// recent sessions, newest first.
	RecentOrderingKeys(ctx context.Context, userID string, limit int) ([]string, error)

	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*SessionRecord, error)
}
