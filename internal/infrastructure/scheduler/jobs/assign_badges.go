// Package jobs contains implementations of scheduled jobs for the
// BrainSpark progression engine.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/brainspark/brainspark-engine/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGN BADGES JOB
// ══════════════════════════════════════════════════════════════════════════════

// AssignBadgesJob runs the periodic badge assignment sweep over all
// users. The sweep is idempotent: users who already hold their highest
// qualifying badge are untouched, and a single user's failure never
// aborts the batch.
type AssignBadgesJob struct {
	handler *command.AssignBadgesHandler
	logger  *slog.Logger
	config  AssignBadgesConfig

	lastRunStats atomic.Value // *SweepStats
}

// AssignBadgesConfig contains configuration for the sweep job.
type AssignBadgesConfig struct {
	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration
}

// DefaultAssignBadgesConfig returns sensible defaults.
func DefaultAssignBadgesConfig() AssignBadgesConfig {
	return AssignBadgesConfig{
		Timeout: 5 * time.Minute,
	}
}

// SweepStats contains statistics from a sweep run.
type SweepStats struct {
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
	UsersScanned int
	Awarded      int
	Failed       int
}

// NewAssignBadgesJob creates a new badge assignment sweep job.
func NewAssignBadgesJob(
	handler *command.AssignBadgesHandler,
	logger *slog.Logger,
	config AssignBadgesConfig,
) *AssignBadgesJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &AssignBadgesJob{
		handler: handler,
		logger:  logger,
		config:  config,
	}
}

// Name returns the job name.
func (j *AssignBadgesJob) Name() string {
	return "assign_badges"
}

// Description returns a human-readable description.
func (j *AssignBadgesJob) Description() string {
	return "Sweeps all users and awards the highest qualifying badge"
}

// Run executes the sweep.
func (j *AssignBadgesJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	result, err := j.handler.Handle(ctx)
	if err != nil {
		return fmt.Errorf("badge sweep failed: %w", err)
	}

	stats := &SweepStats{
		StartedAt:    startedAt,
		CompletedAt:  time.Now(),
		Duration:     result.Duration,
		UsersScanned: result.UsersScanned,
		Awarded:      result.BadgesAwarded,
		Failed:       result.UsersFailed,
	}
	j.lastRunStats.Store(stats)

	j.logger.Info("badge sweep finished",
		"users_scanned", stats.UsersScanned,
		"badges_awarded", stats.Awarded,
		"users_failed", stats.Failed,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastRunStats returns statistics from the most recent sweep, or nil
// if the job has not run yet.
func (j *AssignBadgesJob) LastRunStats() *SweepStats {
	stats, _ := j.lastRunStats.Load().(*SweepStats)
	return stats
}
