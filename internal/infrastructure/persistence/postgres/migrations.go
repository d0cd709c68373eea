// Package postgres implements the PostgreSQL persistence layer for the
// BrainSpark progression engine.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USER PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create user_progress table
-- Version: 001

CREATE TABLE IF NOT EXISTS user_progress (
    user_id UUID PRIMARY KEY,
    xp INTEGER NOT NULL DEFAULT 0,
    level INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (xp >= 0),
    CONSTRAINT valid_level CHECK (level >= 1)
);

-- Leaderboard-style queries order by XP
CREATE INDEX IF NOT EXISTS idx_user_progress_xp ON user_progress(xp DESC);

-- XP ledger: every grant recorded for audit and history queries
CREATE TABLE IF NOT EXISTS xp_ledger (
    id BIGSERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES user_progress(user_id) ON DELETE CASCADE,
    delta INTEGER NOT NULL,
    xp_after INTEGER NOT NULL,
    level_after INTEGER NOT NULL,
    source VARCHAR(50) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_delta CHECK (delta >= 0)
);

CREATE INDEX IF NOT EXISTS idx_xp_ledger_user_id ON xp_ledger(user_id);
CREATE INDEX IF NOT EXISTS idx_xp_ledger_user_date ON xp_ledger(user_id, created_at DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS xp_ledger;
DROP TABLE IF EXISTS user_progress;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE STREAKS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create streaks table
-- Version: 002

CREATE TABLE IF NOT EXISTS streaks (
    user_id UUID PRIMARY KEY,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity_date DATE,
    last_milestone_reached INTEGER NOT NULL DEFAULT 0,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_current_streak CHECK (current_streak >= 0),
    CONSTRAINT valid_longest_streak CHECK (longest_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_streaks_current ON streaks(current_streak DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS streaks;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE BADGES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create badge catalog and awards
-- Version: 003

CREATE TABLE IF NOT EXISTS badges (
    id UUID PRIMARY KEY,
    title VARCHAR(100) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    xp_threshold INTEGER NOT NULL DEFAULT 0,
    rank INTEGER NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp_threshold CHECK (xp_threshold >= 0),
    CONSTRAINT valid_rank CHECK (rank > 0),
    CONSTRAINT badges_title_unique UNIQUE (title)
);

-- Rank is unique among active badges only; deactivated badges free
-- their rank for reuse.
CREATE UNIQUE INDEX IF NOT EXISTS badges_active_rank_unique
    ON badges(rank) WHERE active;

-- One badge per user: awards only ever move up in rank
CREATE TABLE IF NOT EXISTS user_badges (
    user_id UUID PRIMARY KEY,
    badge_id UUID NOT NULL REFERENCES badges(id),
    awarded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_user_badges_badge_id ON user_badges(badge_id);
`

const migration003Down = `
DROP TABLE IF EXISTS user_badges;
DROP TABLE IF EXISTS badges;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE QUIZ
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create question pool and quiz sessions
-- Version: 004

CREATE TABLE IF NOT EXISTS questions (
    id UUID PRIMARY KEY,
    text TEXT NOT NULL,
    topic VARCHAR(100) NOT NULL DEFAULT '',
    difficulty VARCHAR(20) NOT NULL DEFAULT '',
    options JSONB NOT NULL DEFAULT '[]'::jsonb,
    answer INTEGER NOT NULL DEFAULT 0,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_questions_topic ON questions(topic) WHERE active;
CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty) WHERE active;
CREATE INDEX IF NOT EXISTS idx_questions_active ON questions(active);

CREATE TABLE IF NOT EXISTS quiz_sessions (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL,
    question_ids JSONB NOT NULL,
    ordering_key TEXT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Recent-session lookups scan newest first per user
CREATE INDEX IF NOT EXISTS idx_quiz_sessions_user_date
    ON quiz_sessions(user_id, created_at DESC);
`

const migration004Down = `
DROP TABLE IF EXISTS quiz_sessions;
DROP TABLE IF EXISTS questions;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_user_progress",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_streaks",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_badges",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_quiz",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}
