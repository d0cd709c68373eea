// Package postgres implements the PostgreSQL persistence layer for the
// BrainSpark progression engine.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
	"github.com/brainspark/brainspark-engine/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progression.Repository for PostgreSQL.
// Mutations run under SELECT ... FOR UPDATE so concurrent XP grants for
// the same user serialize instead of losing updates.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// GetByUserID returns a user's progress.
func (r *ProgressRepository) GetByUserID(ctx context.Context, userID string) (*progression.UserProgress, error) {
	query := `
		SELECT user_id, xp, level, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
	`

	row := r.conn.QueryRow(ctx, query, userID)
	return scanProgress(row)
}

// Mutate applies fn to the user's progress row inside a transaction,
// holding a row lock for the duration. A missing row is created with
// zero XP before fn runs. Every XP change is also appended to the
// xp_ledger audit table, attributed to source.
func (r *ProgressRepository) Mutate(ctx context.Context, userID, source string, fn func(*progression.UserProgress) error) (*progression.UserProgress, error) {
	var result *progression.UserProgress

	err := r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			SELECT user_id, xp, level, created_at, updated_at
			FROM user_progress
			WHERE user_id = $1
			FOR UPDATE
		`, userID)

		p, err := scanProgress(row)
		if err != nil {
			if !shared.IsNotFound(err) {
				return err
			}

			p = progression.NewUserProgress(userID)
			_, err = tx.Exec(ctx, `
				INSERT INTO user_progress (user_id, xp, level, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5)
			`, p.UserID, p.XP, p.Level, p.CreatedAt, p.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create user progress: %w", err)
			}
		}

		xpBefore := p.XP

		if err := fn(p); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE user_progress
			SET xp = $1, level = $2, updated_at = $3
			WHERE user_id = $4
		`, p.XP, p.Level, p.UpdatedAt, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to update user progress: %w", err)
		}

		if p.XP != xpBefore {
			_, err = tx.Exec(ctx, `
				INSERT INTO xp_ledger (user_id, delta, xp_after, level_after, source)
				VALUES ($1, $2, $3, $4, $5)
			`, p.UserID, p.XP-xpBefore, p.XP, p.Level, source)
			if err != nil {
				return fmt.Errorf("failed to append xp ledger entry: %w", err)
			}
		}

		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListUserIDs returns the IDs of all users with a progress row.
func (r *ProgressRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, "SELECT user_id FROM user_progress ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// TopByXP returns the users with the most XP.
func (r *ProgressRepository) TopByXP(ctx context.Context, limit int) ([]*progression.UserProgress, error) {
	query := `
		SELECT user_id, xp, level, created_at, updated_at
		FROM user_progress
		ORDER BY xp DESC, user_id
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top progress: %w", err)
	}
	defer rows.Close()

	var progresses []*progression.UserProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		progresses = append(progresses, p)
	}

	return progresses, rows.Err()
}

// Count returns the number of progress rows.
func (r *ProgressRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.QueryRow(ctx, "SELECT COUNT(*) FROM user_progress").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count user progress: %w", err)
	}
	return count, nil
}

// History returns the user's most recent XP grants, newest first.
func (r *ProgressRepository) History(ctx context.Context, userID string, limit int) ([]*progression.LedgerEntry, error) {
	query := `
		SELECT id, user_id, delta, xp_after, level_after, source, created_at
		FROM xp_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query xp ledger: %w", err)
	}
	defer rows.Close()

	var entries []*progression.LedgerEntry
	for rows.Next() {
		var e progression.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Delta, &e.XPAfter, &e.LevelAfter, &e.Source, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Scanning
// ─────────────────────────────────────────────────────────────────────────────

func scanProgress(row pgx.Row) (*progression.UserProgress, error) {
	var p progression.UserProgress
	var createdAt, updatedAt time.Time

	err := row.Scan(&p.UserID, &p.XP, &p.Level, &createdAt, &updatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to scan user progress: %w", err)
	}

	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = updatedAt.UTC()
	return &p, nil
}
