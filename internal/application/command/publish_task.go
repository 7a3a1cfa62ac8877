package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/provisioning"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/user"
	"github.com/internship-hub/internship-service/pkg/logger"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH TASK COMMAND
// Публикация задания раздаёт форки шаблонного репозитория всем действующим
// стажёрам стажировки. Аудитория резолвится ДО выставления даты публикации:
// если раздавать некому, публикация не происходит вовсе.
//
// Раздача форков - best effort: неудавшийся форк отдельного стажёра не
// откатывает публикацию, а записывается в pending_forks и доезжает
// планировщиком.
// ══════════════════════════════════════════════════════════════════════════════

// PublishTaskCommand publishes a single task.
type PublishTaskCommand struct {
	// TaskID is the task to publish.
	TaskID string

	// ForkConcurrency controls how many forks run in parallel.
	ForkConcurrency int
}

// Validate validates the command.
func (c PublishTaskCommand) Validate() error {
	if c.TaskID == "" {
		return shared.NewDomainError("task", "Publish", shared.ErrEmptyValue, "task id cannot be empty")
	}
	return nil
}

// PublishTaskResult contains the result of task publication.
type PublishTaskResult struct {
	// TaskID is the published task.
	TaskID string

	// PublishedAt is when the task was published.
	PublishedAt time.Time

	// ForkedCount is the number of successfully created forks.
	ForkedCount int

	// DeferredCount is the number of forks recorded for retry.
	DeferredCount int
}

// PublishTaskHandler handles the PublishTaskCommand.
type PublishTaskHandler struct {
	lessonRepo  lesson.Repository
	taskRepo    lesson.TaskRepository
	userRepo    user.Repository
	forkRepo    provisioning.Repository
	provisioner ProvisioningClient
	log         *logger.Logger
}

// NewPublishTaskHandler creates a new PublishTaskHandler.
func NewPublishTaskHandler(
	lessonRepo lesson.Repository,
	taskRepo lesson.TaskRepository,
	userRepo user.Repository,
	forkRepo provisioning.Repository,
	provisioner ProvisioningClient,
	log *logger.Logger,
) *PublishTaskHandler {
	if log == nil {
		log = logger.Default()
	}
	return &PublishTaskHandler{
		lessonRepo:  lessonRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		forkRepo:    forkRepo,
		provisioner: provisioner,
		log:         log.With(logger.Component("publish_task")),
	}
}

// Handle executes the publish task command.
func (h *PublishTaskHandler) Handle(ctx context.Context, cmd PublishTaskCommand) (*PublishTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	t, err := h.taskRepo.GetByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	l, err := h.lessonRepo.GetByID(ctx, t.LessonID)
	if err != nil {
		return nil, err
	}

	// Аудитория резолвится до публикации: пустая аудитория отменяет её.
	interns, err := h.userRepo.GetByInternshipAndRole(ctx, l.InternshipID, user.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("publish_task: failed to resolve audience: %w", err)
	}
	if len(interns) == 0 {
		return nil, shared.ErrNoEligibleUsers
	}

	now := timeutil.Now()
	if err := t.Publish(l.IsPublished, now); err != nil {
		return nil, err
	}

	if err := h.taskRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("publish_task: failed to save task: %w", err)
	}

	forked, deferred := h.fanOutForks(ctx, t, interns, cmd.ForkConcurrency)

	return &PublishTaskResult{
		TaskID:        t.ID,
		PublishedAt:   now,
		ForkedCount:   forked,
		DeferredCount: deferred,
	}, nil
}

// fanOutForks forks the task repository into every intern's namespace.
func (h *PublishTaskHandler) fanOutForks(ctx context.Context, t *lesson.Task, interns []*user.User, concurrency int) (forked, deferred int) {
	if concurrency <= 0 {
		concurrency = 5
	}

	sem := make(chan struct{}, concurrency)
	results := make(chan error, len(interns))

	for _, intern := range interns {
		sem <- struct{}{}

		go func(in *user.User) {
			defer func() { <-sem }()
			results <- h.forkForIntern(ctx, t, in)
		}(intern)
	}

	for i := 0; i < len(interns); i++ {
		if err := <-results; err != nil {
			deferred++
		} else {
			forked++
		}
	}

	return forked, deferred
}

// forkForIntern forks the repository for one intern, recording failures
// for the scheduler to retry.
func (h *PublishTaskHandler) forkForIntern(ctx context.Context, t *lesson.Task, in *user.User) error {
	_, err := h.provisioner.ForkRepository(ctx, t.RepositoryID, in.Username)
	if err == nil || errors.Is(err, shared.ErrAlreadyExists) {
		return nil
	}

	h.log.Warn("fork failed, deferring for retry",
		logger.TaskName(t.Name),
		logger.Username(in.Username),
		logger.Err(err),
	)

	pf, buildErr := provisioning.NewPendingFork(t.ID, in.ID, in.Username, t.RepositoryID, err)
	if buildErr != nil {
		h.log.Error("failed to build pending fork record", logger.Err(buildErr))
		return err
	}

	if createErr := h.forkRepo.Create(ctx, pf); createErr != nil && !errors.Is(createErr, shared.ErrAlreadyExists) {
		h.log.Error("failed to record pending fork",
			logger.TaskName(t.Name),
			logger.Username(in.Username),
			logger.Err(createErr),
		)
	}

	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH LESSON TASKS COMMAND
// Пакетная публикация всех неопубликованных заданий занятия в стабильном
// порядке (по времени создания).
// ══════════════════════════════════════════════════════════════════════════════

// PublishLessonTasksCommand publishes every unpublished task of a lesson.
type PublishLessonTasksCommand struct {
	// LessonID is the lesson whose tasks are published.
	LessonID string

	// ForkConcurrency controls how many forks run in parallel per task.
	ForkConcurrency int
}

// Validate validates the command.
func (c PublishLessonTasksCommand) Validate() error {
	if c.LessonID == "" {
		return shared.NewDomainError("task", "PublishByLesson", shared.ErrEmptyValue, "lesson id cannot be empty")
	}
	return nil
}

// PublishLessonTasksResult contains the result of batch publication.
type PublishLessonTasksResult struct {
	// PublishedTaskIDs lists the tasks published, in creation order.
	PublishedTaskIDs []string

	// ForkedCount is the total number of successfully created forks.
	ForkedCount int

	// DeferredCount is the total number of forks recorded for retry.
	DeferredCount int
}

// PublishLessonTasksHandler handles the PublishLessonTasksCommand.
type PublishLessonTasksHandler struct {
	taskRepo       lesson.TaskRepository
	publishHandler *PublishTaskHandler
}

// NewPublishLessonTasksHandler creates a new PublishLessonTasksHandler.
func NewPublishLessonTasksHandler(
	taskRepo lesson.TaskRepository,
	publishHandler *PublishTaskHandler,
) *PublishLessonTasksHandler {
	return &PublishLessonTasksHandler{
		taskRepo:       taskRepo,
		publishHandler: publishHandler,
	}
}

// Handle executes the batch publish command.
func (h *PublishLessonTasksHandler) Handle(ctx context.Context, cmd PublishLessonTasksCommand) (*PublishLessonTasksResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	tasks, err := h.taskRepo.GetUnpublishedByLesson(ctx, cmd.LessonID)
	if err != nil {
		return nil, fmt.Errorf("publish_lesson_tasks: failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, shared.ErrNoTasksToPublish
	}

	result := &PublishLessonTasksResult{}
	for _, t := range tasks {
		taskRes, err := h.publishHandler.Handle(ctx, PublishTaskCommand{
			TaskID:          t.ID,
			ForkConcurrency: cmd.ForkConcurrency,
		})
		if err != nil {
			// Частично опубликованное занятие - допустимое состояние:
			// уже выставленные даты публикации не откатываются.
			return result, fmt.Errorf("publish_lesson_tasks: task %q: %w", t.Name, err)
		}

		result.PublishedTaskIDs = append(result.PublishedTaskIDs, t.ID)
		result.ForkedCount += taskRes.ForkedCount
		result.DeferredCount += taskRes.DeferredCount
	}

	return result, nil
}
