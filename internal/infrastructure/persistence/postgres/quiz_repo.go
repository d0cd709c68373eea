// Package postgres implements the PostgreSQL persistence layer for the
// BrainSpark progression engine.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/quiz"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUESTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// QuestionRepository implements quiz.QuestionRepository for PostgreSQL.
type QuestionRepository struct {
	conn *Connection
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(conn *Connection) *QuestionRepository {
	return &QuestionRepository{conn: conn}
}

// Create persists a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *quiz.Question) error {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal question options: %w", err)
	}

	query := `
		INSERT INTO questions (id, text, topic, difficulty, options, answer, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.conn.Exec(ctx, query,
		q.ID, q.Text, q.Topic, q.Difficulty, optionsJSON, q.Answer, q.Active, q.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// GetByID returns a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*quiz.Question, error) {
	query := `
		SELECT id, text, topic, difficulty, options, answer, active, created_at
		FROM questions
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanQuestion(row)
}

// ListIDs returns the IDs of questions matching the filter.
func (r *QuestionRepository) ListIDs(ctx context.Context, filter quiz.PoolFilter) ([]string, error) {
	query := "SELECT id FROM questions"
	var conds []string
	var args []interface{}

	if filter.ActiveOnly {
		conds = append(conds, "active")
	}
	if filter.Topic != "" {
		args = append(args, filter.Topic)
		conds = append(conds, fmt.Sprintf("topic = $%d", len(args)))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty)
		conds = append(conds, fmt.Sprintf("difficulty = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list question ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan question id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// GetByIDs returns questions for the given IDs, preserving the input order.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]*quiz.Question, error) {
	if len(ids) == 0 {
		return []*quiz.Question{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, text, topic, difficulty, options, answer, active, created_at
		FROM questions
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query questions by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*quiz.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reorder to match the session's question order
	questions := make([]*quiz.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}

	return questions, nil
}

func scanQuestion(row pgx.Row) (*quiz.Question, error) {
	var q quiz.Question
	var optionsJSON []byte
	var createdAt time.Time

	err := row.Scan(&q.ID, &q.Text, &q.Topic, &q.Difficulty, &optionsJSON, &q.Answer, &q.Active, &createdAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to scan question: %w", err)
	}

	if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question options: %w", err)
	}

	q.CreatedAt = createdAt.UTC()
	return &q, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements quiz.SessionRepository for PostgreSQL.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// Create persists a session record.
func (r *SessionRepository) Create(ctx context.Context, rec *quiz.SessionRecord) error {
	idsJSON, err := json.Marshal(rec.QuestionIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal question ids: %w", err)
	}

	query := `
		INSERT INTO quiz_sessions (id, user_id, question_ids, ordering_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.conn.Exec(ctx, query,
		rec.ID, rec.UserID, idsJSON, rec.OrderingKey, rec.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create quiz session: %w", err)
	}

	return nil
}

// GetByID returns a session by ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*quiz.SessionRecord, error) {
	query := `
		SELECT id, user_id, question_ids, ordering_key, created_at
		FROM quiz_sessions
		WHERE id = $1
	`

	row := r.conn.QueryRow(ctx, query, id)
	return scanSession(row)
}

// RecentOrderingKeys returns the ordering keys of the user's most
// recent sessions, newest first.
func (r *SessionRepository) RecentOrderingKeys(ctx context.Context, userID string, limit int) ([]string, error) {
	query := `
		SELECT ordering_key
		FROM quiz_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ordering keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan ordering key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// ListByUser returns the user's sessions, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*quiz.SessionRecord, error) {
	query := `
		SELECT id, user_id, question_ids, ordering_key, created_at
		FROM quiz_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*quiz.SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*quiz.SessionRecord, error) {
	var rec quiz.SessionRecord
	var idsJSON []byte
	var createdAt time.Time

	err := row.Scan(&rec.ID, &rec.UserID, &idsJSON, &rec.OrderingKey, &createdAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to scan quiz session: %w", err)
	}

	if err := json.Unmarshal(idsJSON, &rec.QuestionIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question ids: %w", err)
	}

	rec.CreatedAt = createdAt.UTC()
	return &rec, nil
}
