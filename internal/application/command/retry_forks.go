package command

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
// RETRY PENDING FORKS COMMAND
// Повтор отложенных форков. Запускается планировщиком. Записи обрабатываются
// в порядке создания; исчерпавшие лимит попыток остаются в таблице и ждут
// ручного вмешательства.
// ══════════════════════════════════════════════════════════════════════════════

// RetryPendingForksCommand retries deferred forks.
type RetryPendingForksCommand struct {
	// BatchSize bounds how many records are processed per run.
	BatchSize int
}

// RetryPendingForksResult contains the result of a retry run.
type RetryPendingForksResult struct {
	// Processed is the count of records attempted.
	Processed int

	// Succeeded is the count of forks that went through.
	Succeeded int

	// Failed is the count of forks that failed again.
	Failed int

	// Exhausted is the count of records that hit the attempt limit.
	Exhausted int

	// Duration is how long the run took.
	Duration time.Duration
}

// RetryPendingForksHandler handles the RetryPendingForksCommand.
type RetryPendingForksHandler struct {
	forkRepo    provisioning.Repository
	provisioner ProvisioningClient
	log         *logger.Logger
}

// NewRetryPendingForksHandler creates a new RetryPendingForksHandler.
func NewRetryPendingForksHandler(
	forkRepo provisioning.Repository,
	provisioner ProvisioningClient,
	log *logger.Logger,
) *RetryPendingForksHandler {
	if log == nil {
		log = logger.Default()
	}
	return &RetryPendingForksHandler{
		forkRepo:    forkRepo,
		provisioner: provisioner,
		log:         log.With(logger.Component("retry_forks")),
	}
}

// Handle executes the retry pending forks command.
func (h *RetryPendingForksHandler) Handle(ctx context.Context, cmd RetryPendingForksCommand) (*RetryPendingForksResult, error) {
	started := time.Now()

	batch := cmd.BatchSize
	if batch <= 0 {
		batch = 50
	}

	pending, err := h.forkRepo.GetPending(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("retry_forks: failed to list pending forks: %w", err)
	}

	result := &RetryPendingForksResult{}
	for _, pf := range pending {
		if ctx.Err() != nil {
			break
		}
		if pf.Exhausted() {
			result.Exhausted++
			continue
		}

		result.Processed++
		h.retryOne(ctx, pf, result)
	}

	result.Duration = time.Since(started)
	return result, nil
}

// retryOne replays a single deferred fork.
func (h *RetryPendingForksHandler) retryOne(ctx context.Context, pf *provisioning.PendingFork, result *RetryPendingForksResult) {
	_, err := h.provisioner.ForkRepository(ctx, pf.RepositoryID, pf.Username)
	if err == nil || errors.Is(err, shared.ErrAlreadyExists) {
		if delErr := h.forkRepo.Delete(ctx, pf.ID); delErr != nil && !errors.Is(delErr, shared.ErrNotFound) {
			h.log.Error("failed to delete completed pending fork",
				logger.Username(pf.Username),
				logger.Err(delErr),
			)
		}
		result.Succeeded++
		return
	}

	pf.RecordFailure(err)
	if pf.Exhausted() {
		h.log.Error("pending fork exhausted retry attempts",
			logger.Username(pf.Username),
			logger.Int64("repository_id", pf.RepositoryID),
			logger.Err(err),
		)
	}

	if updErr := h.forkRepo.Update(ctx, pf); updErr != nil {
		h.log.Error("failed to record fork retry failure",
			logger.Username(pf.Username),
			logger.Err(updErr),
		)
	}

	result.Failed++
}
