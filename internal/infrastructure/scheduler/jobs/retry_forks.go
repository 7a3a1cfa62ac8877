// Package jobs contains implementations of scheduled jobs for the
// internship service.
package jobs

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RETRY FORKS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RetryForksJob replays deferred fork provisioning. Публикация задания не
// ждёт GitLab вечно: неудавшиеся форки складываются в pending_forks, а эта
// джоба доводит их до конца.
type RetryForksJob struct {
	handler   *command.RetryPendingForksHandler
	batchSize int
	log       *logger.Logger
}

// NewRetryForksJob creates a new RetryForksJob.
func NewRetryForksJob(handler *command.RetryPendingForksHandler, batchSize int, log *logger.Logger) *RetryForksJob {
	if log == nil {
		log = logger.Default()
	}
	return &RetryForksJob{
		handler:   handler,
		batchSize: batchSize,
		log:       log.With(logger.Component("retry_forks_job")),
	}
}

// Name returns the unique job name.
func (j *RetryForksJob) Name() string {
	return "retry_forks"
}

// Description returns a human-readable description.
func (j *RetryForksJob) Description() string {
	return "Retries deferred repository forks for published tasks"
}

// Run executes one retry pass.
func (j *RetryForksJob) Run(ctx context.Context) error {
	result, err := j.handler.Handle(ctx, command.RetryPendingForksCommand{
		BatchSize: j.batchSize,
	})
	if err != nil {
		return fmt.Errorf("retry_forks job: %w", err)
	}

	if result.Processed > 0 || result.Exhausted > 0 {
		j.log.Info("fork retry pass finished",
			logger.Int("processed", result.Processed),
			logger.Int("succeeded", result.Succeeded),
			logger.Int("failed", result.Failed),
			logger.Int("exhausted", result.Exhausted),
			logger.Duration("duration", result.Duration),
		)
	}

	return nil
}
