package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/provisioning"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLEANUP FORKS JOB
// ══════════════════════════════════════════════════════════════════════════════

// CleanupForksJob drops pending fork records that exhausted their retry
// attempts long ago. Такие записи требовали ручного вмешательства; если за
// maxAge им никто не занялся, они только засоряют таблицу.
type CleanupForksJob struct {
	forkRepo  provisioning.Repository
	maxAge    time.Duration
	batchSize int
	log       *logger.Logger
}

// NewCleanupForksJob creates a new CleanupForksJob.
// A zero maxAge defaults to thirty days.
func NewCleanupForksJob(forkRepo provisioning.Repository, maxAge time.Duration, log *logger.Logger) *CleanupForksJob {
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	if log == nil {
		log = logger.Default()
	}
	return &CleanupForksJob{
		forkRepo:  forkRepo,
		maxAge:    maxAge,
		batchSize: 200,
		log:       log.With(logger.Component("cleanup_forks_job")),
	}
}

// Name returns the unique job name.
func (j *CleanupForksJob) Name() string {
	return "cleanup_forks"
}

// Description returns a human-readable description.
func (j *CleanupForksJob) Description() string {
	return "Removes exhausted pending fork records past their retention age"
}

// Run executes one cleanup pass.
func (j *CleanupForksJob) Run(ctx context.Context) error {
	pending, err := j.forkRepo.GetPending(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("cleanup_forks job: %w", err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, pf := range pending {
		if ctx.Err() != nil {
			break
		}
		if !pf.Exhausted() || pf.UpdatedAt.After(cutoff) {
			continue
		}

		if err := j.forkRepo.Delete(ctx, pf.ID); err != nil && !errors.Is(err, shared.ErrNotFound) {
			j.log.Error("failed to delete stale pending fork",
				logger.Username(pf.Username),
				logger.Err(err),
			)
			continue
		}
		removed++
	}

	if removed > 0 {
		j.log.Info("stale pending forks removed", logger.Int("removed", removed))
	}

	return nil
}
