package query

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PUBLISHED QUERY
// Учебная программа глазами стажёра: только опубликованные занятия и только
// опубликованные на текущий момент задания внутри них.
// ══════════════════════════════════════════════════════════════════════════════

// ListPublishedQuery contains the parameters of the published curriculum.
type ListPublishedQuery struct {
	// InternshipID - стажировка, программа которой запрашивается.
	InternshipID string
}

// Validate проверяет корректность параметров.
func (q ListPublishedQuery) Validate() error {
	if q.InternshipID == "" {
		return shared.NewDomainError("lesson", "ListPublished", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return nil
}

// PublishedTaskDTO - опубликованное задание.
type PublishedTaskDTO struct {
	// ID - идентификатор задания.
	ID string `json:"id"`

	// Name - название задания.
	Name string `json:"name"`

	// Description - условие задания.
	Description string `json:"description"`

	// RepositoryURL - адрес шаблонного репозитория.
	RepositoryURL string `json:"repository_url"`

	// PublishDate - дата публикации.
	PublishDate string `json:"publish_date"`
}

// PublishedLessonDTO - опубликованное занятие с его заданиями.
type PublishedLessonDTO struct {
	// ID - идентификатор занятия.
	ID string `json:"id"`

	// Name - название занятия.
	Name string `json:"name"`

	// Description - описание занятия.
	Description string `json:"description"`

	// Tasks - опубликованные задания занятия.
	Tasks []PublishedTaskDTO `json:"tasks"`
}

// ListPublishedHandler handles the ListPublishedQuery.
type ListPublishedHandler struct {
	lessonRepo lesson.Repository
	taskRepo   lesson.TaskRepository
}

// NewListPublishedHandler creates a new ListPublishedHandler.
func NewListPublishedHandler(lessonRepo lesson.Repository, taskRepo lesson.TaskRepository) *ListPublishedHandler {
	return &ListPublishedHandler{
		lessonRepo: lessonRepo,
		taskRepo:   taskRepo,
	}
}

// Handle executes the list published query.
func (h *ListPublishedHandler) Handle(ctx context.Context, q ListPublishedQuery) ([]PublishedLessonDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	lessons, err := h.lessonRepo.GetPublishedByInternship(ctx, q.InternshipID)
	if err != nil {
		return nil, fmt.Errorf("list_published: failed to list lessons: %w", err)
	}

	now := timeutil.Now()
	published, err := h.taskRepo.GetPublished(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list_published: failed to list tasks: %w", err)
	}

	tasksByLesson := make(map[string][]PublishedTaskDTO)
	for _, t := range published {
		dto := PublishedTaskDTO{
			ID:            t.ID,
			Name:          t.Name,
			Description:   t.Description,
			RepositoryURL: t.RepositoryURL,
		}
		if t.PublishDate != nil {
			dto.PublishDate = timeutil.FormatMoscow(*t.PublishDate, timeutil.FormatDateTimeSeconds)
		}
		tasksByLesson[t.LessonID] = append(tasksByLesson[t.LessonID], dto)
	}

	result := make([]PublishedLessonDTO, 0, len(lessons))
	for _, l := range lessons {
		tasks := tasksByLesson[l.ID]
		if tasks == nil {
			tasks = []PublishedTaskDTO{}
		}
		result = append(result, PublishedLessonDTO{
			ID:          l.ID,
			Name:        l.Name,
			Description: l.Description,
			Tasks:       tasks,
		})
	}

	return result, nil
}
