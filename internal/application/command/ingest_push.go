package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
	"github.com/internship-hub/internship-service/pkg/logger"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// INGEST PUSH COMMAND
// Приём пуш-вебхука из GitLab. Пуш трассируется к стажёру и заданию по
// соглашению об именовании: неймспейс форка - это username стажёра, имя
// проекта - имя задания. Операция идемпотентна: повторная доставка того же
// события приводит решение к тому же состоянию.
// ══════════════════════════════════════════════════════════════════════════════

// PushCommit describes one commit of a push event.
type PushCommit struct {
	// SHA is the commit hash.
	SHA string

	// URL is the browsable commit URL.
	URL string

	// Timestamp is the commit time in RFC3339.
	Timestamp string
}

// IngestPushCommand contains the payload of a push webhook.
type IngestPushCommand struct {
	// ProjectID is the GitLab project the push landed in.
	ProjectID int64

	// ProjectName is the project name, matching the task name.
	ProjectName string

	// Namespace is the project namespace, matching the intern's username.
	Namespace string

	// RepositoryURL is the fork's web URL, the solution's natural key.
	RepositoryURL string

	// Commits are the commits of the push, oldest first.
	Commits []PushCommit

	// TotalCommitsCount is the commit count reported by GitLab.
	TotalCommitsCount int
}

// Validate validates the command.
func (c IngestPushCommand) Validate() error {
	if c.ProjectID <= 0 || c.ProjectName == "" || c.Namespace == "" || c.RepositoryURL == "" {
		return shared.NewDomainError("solution", "Ingest", shared.ErrInvalidInput, "push event is missing project data")
	}
	return nil
}

// IngestPushResult contains the result of push ingestion.
type IngestPushResult struct {
	// SolutionID is the created or updated solution.
	SolutionID string

	// Created is true when this push created a new solution.
	Created bool

	// LastCommitTime is the recorded commit time.
	LastCommitTime time.Time
}

// IngestPushHandler handles the IngestPushCommand.
type IngestPushHandler struct {
	solutionRepo solution.Repository
	taskRepo     lesson.TaskRepository
	userRepo     user.Repository
	provisioner  ProvisioningClient
	log          *logger.Logger
}

// NewIngestPushHandler creates a new IngestPushHandler.
func NewIngestPushHandler(
	solutionRepo solution.Repository,
	taskRepo lesson.TaskRepository,
	userRepo user.Repository,
	provisioner ProvisioningClient,
	log *logger.Logger,
) *IngestPushHandler {
	if log == nil {
		log = logger.Default()
	}
	return &IngestPushHandler{
		solutionRepo: solutionRepo,
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		provisioner:  provisioner,
		log:          log.With(logger.Component("ingest_push")),
	}
}

// Handle executes the ingest push command.
func (h *IngestPushHandler) Handle(ctx context.Context, cmd IngestPushCommand) (*IngestPushResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if len(cmd.Commits) == 0 || cmd.TotalCommitsCount == 0 {
		return nil, shared.ErrEmptyPush
	}

	// Пуш в не-форк (например, в шаблонный репозиторий задания) - не
	// решение. Проверка идёт через кеш вердиктов в адаптере.
	isFork, err := h.provisioner.IsForkedRepository(ctx, cmd.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("ingest_push: failed to check fork ancestry: %w", err)
	}
	if !isFork {
		return nil, shared.ErrUntracedPush
	}

	in, err := h.userRepo.GetByUsername(ctx, cmd.Namespace)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil, shared.ErrUntracedPush
		}
		return nil, fmt.Errorf("ingest_push: failed to resolve user: %w", err)
	}
	if in.Role == user.RoleArchived {
		return nil, shared.ErrUserArchived
	}

	t, err := h.taskRepo.GetByName(ctx, cmd.ProjectName)
	if err != nil {
		if errors.Is(err, shared.ErrTaskNotFound) {
			return nil, shared.ErrUntracedPush
		}
		return nil, fmt.Errorf("ingest_push: failed to resolve task: %w", err)
	}

	last := cmd.Commits[len(cmd.Commits)-1]
	commitTime, err := timeutil.ParseCommitTimestamp(last.Timestamp)
	if err != nil {
		return nil, shared.WrapError("solution", "Ingest", shared.ErrInvalidInput, "bad commit timestamp", err)
	}

	now := timeutil.Now()
	return h.upsert(ctx, cmd.RepositoryURL, last.URL, in.ID, t.ID, commitTime, now)
}

// upsert records the push against the solution keyed by repository URL.
// Гонка двух доставок разрешается уникальным индексом: проигравший Create
// повторяет операцию как обновление.
func (h *IngestPushHandler) upsert(ctx context.Context, repoURL, commitURL, userID, taskID string, commitTime, now time.Time) (*IngestPushResult, error) {
	existing, err := h.solutionRepo.GetByRepositoryURL(ctx, repoURL)
	switch {
	case err == nil:
		existing.RecordPush(commitTime, commitURL, now)
		if err := h.solutionRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("ingest_push: failed to update solution: %w", err)
		}
		return &IngestPushResult{
			SolutionID:     existing.ID,
			LastCommitTime: commitTime,
		}, nil

	case errors.Is(err, shared.ErrSolutionNotFound):
		// Первый пуш в этот форк, идём создавать.

	default:
		return nil, fmt.Errorf("ingest_push: failed to look up solution: %w", err)
	}

	s, err := solution.NewSolution(uuid.NewString(), repoURL, commitURL, userID, taskID, commitTime, now)
	if err != nil {
		return nil, err
	}

	if err := h.solutionRepo.Create(ctx, s); err != nil {
		if errors.Is(err, shared.ErrSolutionExists) {
			h.log.Debug("lost create race, retrying as update", logger.RepositoryURL(repoURL))
			return h.upsert(ctx, repoURL, commitURL, userID, taskID, commitTime, now)
		}
		return nil, fmt.Errorf("ingest_push: failed to create solution: %w", err)
	}

	return &IngestPushResult{
		SolutionID:     s.ID,
		Created:        true,
		LastCommitTime: commitTime,
	}, nil
}
