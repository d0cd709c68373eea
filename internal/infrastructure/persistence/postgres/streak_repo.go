// Package postgres implements the PostgreSQL persistence layer for the
// BrainSpark progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/shared"
	"github.com/brainspark/brainspark-engine/internal/domain/streak"
	"github.com/brainspark/brainspark-engine/pkg/timeutil"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StreakRepository implements streak.Repository for PostgreSQL.
// Activity for the same user can arrive from concurrent submissions, so
// mutations take a row lock like ProgressRepository does.
type StreakRepository struct {
	conn *Connection
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(conn *Connection) *StreakRepository {
	return &StreakRepository{conn: conn}
}

// GetByUserID returns a user's streak state.
func (r *StreakRepository) GetByUserID(ctx context.Context, userID string) (*streak.State, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date,
			   last_milestone_reached, updated_at
		FROM streaks
		WHERE user_id = $1
	`

	row := r.conn.QueryRow(ctx, query, userID)
	return scanStreak(row)
}

// Mutate applies fn to the user's streak row inside a transaction,
// holding a row lock. A missing row is created empty before fn runs.
func (r *StreakRepository) Mutate(ctx context.Context, userID string, fn func(*streak.State) error) (*streak.State, error) {
	var result *streak.State

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT user_id, current_streak, longest_streak, last_activity_date,
				   last_milestone_reached, updated_at
			FROM streaks
			WHERE user_id = $1
			FOR UPDATE
		`, userID)

		s, err := scanStreak(row)
		if err != nil {
			if !shared.IsNotFound(err) {
				return err
			}

			s = streak.NewState(userID)
			_, err = tx.Exec(ctx, `
				INSERT INTO streaks (user_id, current_streak, longest_streak,
					last_activity_date, last_milestone_reached, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, s.UserID, s.CurrentStreak, s.LongestStreak,
				dateToSQL(s.LastActivityDate), s.LastMilestoneReached, s.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create streak state: %w", err)
			}
		}

		if err := fn(s); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE streaks
			SET current_streak = $1, longest_streak = $2, last_activity_date = $3,
				last_milestone_reached = $4, updated_at = $5
			WHERE user_id = $6
		`, s.CurrentStreak, s.LongestStreak, dateToSQL(s.LastActivityDate),
			s.LastMilestoneReached, s.UpdatedAt, s.UserID)
		if err != nil {
			return fmt.Errorf("failed to update streak state: %w", err)
		}

		result = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// TopCurrent returns the users with the longest running streaks.
func (r *StreakRepository) TopCurrent(ctx context.Context, limit int) ([]*streak.State, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date,
			   last_milestone_reached, updated_at
		FROM streaks
		WHERE current_streak > 0
		ORDER BY current_streak DESC, user_id
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top streaks: %w", err)
	}
	defer rows.Close()

	var states []*streak.State
	for rows.Next() {
		s, err := scanStreak(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}

	return states, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

// dateToSQL converts a calendar date to a nullable DATE value.
// The zero date maps to NULL (no activity recorded yet).
func dateToSQL(d timeutil.Date) interface{} {
	if d.IsZero() {
		return nil
	}
	return d.Time()
}

func scanStreak(row pgx.Row) (*streak.State, error) {
	var s streak.State
	var lastActivity *time.Time
	var updatedAt time.Time

	err := row.Scan(&s.UserID, &s.CurrentStreak, &s.LongestStreak,
		&lastActivity, &s.LastMilestoneReached, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrStreakNotFound
		}
		return nil, fmt.Errorf("failed to scan streak state: %w", err)
	}

	if lastActivity != nil {
		s.LastActivityDate = timeutil.DateOf(*lastActivity, time.UTC)
	}
	s.UpdatedAt = updatedAt.UTC()
	return &s, nil
}
