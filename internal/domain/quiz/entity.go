// Package quiz contains domain entities and the session selection logic.
// A quiz session is a randomly ordered subset of the question pool; the
// selector avoids handing a user the exact same question ordering twice.
// This is a pure domain layer with zero external dependencies.
package quiz

import (
	"strings"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
)

// Question represents a quiz question in the pool.
type Question struct {
	ID         string
	Text       string
	Topic      string
	Difficulty string
	Options    []string
	Answer     int // index into Options
	Active     bool
	CreatedAt  time.Time
}

// Validate checks question invariants before persisting.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return shared.ErrEmptyQuestionText
	}
	if len(q.Options) > 0 && (q.Answer < 0 || q.Answer >= len(q.Options)) {
		return shared.NewDomainError("quiz", "Validate", shared.ErrValueOutOfRange, "answer index out of range")
	}
	return nil
}

// SessionRecord captures one assembled quiz session. The ordering key is
// kept so later sessions can be checked against it for repeats.
type SessionRecord struct {
	ID          string
	UserID      string
	QuestionIDs []string
	OrderingKey string
	CreatedAt   time.Time
}

// NewSessionRecord creates a session record for the given ordered questions.
func NewSessionRecord(id, userID string, questionIDs []string) *SessionRecord {
	ids := make([]string, len(questionIDs))
	copy(ids, questionIDs)
	return &SessionRecord{
		ID:          id,
		UserID:      userID,
		QuestionIDs: ids,
		OrderingKey: OrderingKey(ids),
		CreatedAt:   time.Now().UTC(),
	}
}

// OrderingKey builds the canonical fingerprint of an ordered question
// list: the IDs joined with commas, order preserved. Two sessions repeat
// each other exactly when their keys are equal.
func OrderingKey(questionIDs []string) string {
	return strings.Join(questionIDs, ",")
}

// PoolFilter narrows the question pool for a session.
type PoolFilter struct {
	// Topic restricts questions to a topic when non-empty.
	Topic string

	// Difficulty restricts questions to a difficulty when non-empty.
	Difficulty string

	// ActiveOnly excludes retired questions.
	ActiveOnly bool
}

// Matches reports whether the question passes the filter.
func (f PoolFilter) Matches(q *Question) bool {
	if f.ActiveOnly && !q.Active {
		return false
	}
	if f.Topic != "" && q.Topic != f.Topic {
		return false
	}
	if f.Difficulty != "" && q.Difficulty != f.Difficulty {
		return false
	}
	return true
}
