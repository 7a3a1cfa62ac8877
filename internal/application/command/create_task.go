package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE TASK COMMAND
// Создание задания неотделимо от создания шаблонного репозитория в GitLab:
// сначала репозиторий, затем локальная запись. Имя задания обязано совпадать
// с именем проекта - по нему пуш трассируется обратно к заданию.
// ══════════════════════════════════════════════════════════════════════════════

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	// Name is the task name, reused as the GitLab project name.
	Name string

	// Description is the task statement.
	Description string

	// LessonID is the lesson the task belongs to.
	LessonID string
}

// Validate validates the command.
func (c CreateTaskCommand) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("task", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	if c.LessonID == "" {
		return shared.NewDomainError("task", "Create", shared.ErrEmptyValue, "lesson id cannot be empty")
	}
	return nil
}

// CreateTaskResult contains the result of task creation.
type CreateTaskResult struct {
	// TaskID is the ID of the created task.
	TaskID string

	// RepositoryURL is the URL of the provisioned template repository.
	RepositoryURL string

	// RepositoryID is the GitLab project ID.
	RepositoryID int64

	// CreatedAt is when the task was created.
	CreatedAt time.Time
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	lessonRepo  lesson.Repository
	taskRepo    lesson.TaskRepository
	provisioner ProvisioningClient
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(
	lessonRepo lesson.Repository,
	taskRepo lesson.TaskRepository,
	provisioner ProvisioningClient,
) *CreateTaskHandler {
	return &CreateTaskHandler{
		lessonRepo:  lessonRepo,
		taskRepo:    taskRepo,
		provisioner: provisioner,
	}
}

// Handle executes the create task command.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.lessonRepo.GetByID(ctx, cmd.LessonID); err != nil {
		return nil, err
	}

	// Имя задания уникально глобально, а не в рамках занятия: проект
	// в GitLab один на всю инсталляцию. Проверяем до похода в GitLab.
	if _, err := h.taskRepo.GetByName(ctx, cmd.Name); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrTaskNotFound) {
		return nil, fmt.Errorf("create_task: failed to check name: %w", err)
	}

	repo, err := h.provisioner.CreateRepository(ctx, cmd.Name, cmd.Description)
	if err != nil {
		return nil, fmt.Errorf("create_task: failed to provision repository: %w", err)
	}

	now := timeutil.Now()
	t, err := lesson.NewTask(uuid.NewString(), cmd.Name, cmd.Description, cmd.LessonID, repo.WebURL, repo.ID, now)
	if err != nil {
		return nil, err
	}

	if err := h.taskRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create_task: failed to save task: %w", err)
	}

	return &CreateTaskResult{
		TaskID:        t.ID,
		RepositoryURL: t.RepositoryURL,
		RepositoryID:  t.RepositoryID,
		CreatedAt:     now,
	}, nil
}
