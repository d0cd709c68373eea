package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brainspark/brainspark-engine/internal/domain/progression"
)

// ══════════════════════════════════════════════════════════════════════════════
// REBUILD XP BOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// BoardRebuilder rebuilds the XP scoreboard from a full score map.
type BoardRebuilder interface {
	Rebuild(ctx context.Context, scores map[string]int) error
}

// RebuildXPBoardJob periodically rebuilds the Redis XP scoreboard from
// the authoritative Postgres progress table. The board is normally kept
// current by event handlers; the rebuild corrects any drift after
// restarts or missed events.
type RebuildXPBoardJob struct {
	progressRepo progression.Repository
	board        BoardRebuilder
	logger       *slog.Logger
	config       RebuildXPBoardConfig

	lastRunStats atomic.Value // *RebuildStats
}

// RebuildXPBoardConfig contains configuration for the rebuild job.
type RebuildXPBoardConfig struct {
	// Timeout is the maximum duration for one rebuild.
	Timeout time.Duration

	// TopN limits how many users are loaded into the board.
	TopN int
}

// DefaultRebuildXPBoardConfig returns sensible defaults.
func DefaultRebuildXPBoardConfig() RebuildXPBoardConfig {
	return RebuildXPBoardConfig{
		Timeout: 2 * time.Minute,
		TopN:    1000,
	}
}

// RebuildStats contains statistics from a rebuild run.
type RebuildStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	UsersLoaded int
}

// NewRebuildXPBoardJob creates a new board rebuild job.
func NewRebuildXPBoardJob(
	progressRepo progression.Repository,
	board BoardRebuilder,
	logger *slog.Logger,
	config RebuildXPBoardConfig,
) *RebuildXPBoardJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.TopN <= 0 {
		config.TopN = DefaultRebuildXPBoardConfig().TopN
	}

	return &RebuildXPBoardJob{
		progressRepo: progressRepo,
		board:        board,
		logger:       logger,
		config:       config,
	}
}

// Name returns the job name.
func (j *RebuildXPBoardJob) Name() string {
	return "rebuild_xp_board"
}

// Description returns a human-readable description.
func (j *RebuildXPBoardJob) Description() string {
	return "Rebuilds the Redis XP scoreboard from Postgres"
}

// Run executes the rebuild.
func (j *RebuildXPBoardJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	top, err := j.progressRepo.TopByXP(ctx, j.config.TopN)
	if err != nil {
		return fmt.Errorf("failed to load top users: %w", err)
	}

	scores := make(map[string]int, len(top))
	for _, p := range top {
		scores[p.UserID] = p.XP
	}

	if err := j.board.Rebuild(ctx, scores); err != nil {
		return fmt.Errorf("failed to rebuild board: %w", err)
	}

	stats := &RebuildStats{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Duration:    time.Since(startedAt),
		UsersLoaded: len(scores),
	}
	j.lastRunStats.Store(stats)

	j.logger.Info("xp board rebuilt",
		"users_loaded", stats.UsersLoaded,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastRunStats returns statistics from the most recent rebuild, or nil
// if the job has not run yet.
func (j *RebuildXPBoardJob) LastRunStats() *RebuildStats {
	stats, _ := j.lastRunStats.Load().(*RebuildStats)
	return stats
}
