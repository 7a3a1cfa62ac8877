package query

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST SOLUTIONS QUERY
// Списки решений для панели проверяющего. Фильтры по статусу и заданию
// видят только неархивные решения; фильтр по стажёру показывает всё,
// включая архив.
// ══════════════════════════════════════════════════════════════════════════════

// ListSolutionsQuery contains the solution list filters.
// Заполняется не более одного фильтра; при нескольких приоритет:
// UserID, TaskID, Status, иначе все решения.
type ListSolutionsQuery struct {
	// Status - фильтр по статусу проверки.
	Status string

	// TaskID - фильтр по заданию.
	TaskID string

	// UserID - фильтр по стажёру (включая архивные решения).
	UserID string
}

// SolutionDTO - решение в ответе API.
type SolutionDTO struct {
	// ID - идентификатор решения.
	ID string `json:"id"`

	// RepositoryURL - адрес форка.
	RepositoryURL string `json:"repository_url"`

	// LastCommitTime - время последнего коммита.
	LastCommitTime string `json:"last_commit_time"`

	// LastCommitURL - ссылка на последний коммит.
	LastCommitURL string `json:"last_commit_url"`

	// Status - статус проверки.
	Status string `json:"status"`

	// Comment - комментарий проверяющего.
	Comment string `json:"comment,omitempty"`

	// CheckedTime - время последней проверки; пусто, если не проверялось.
	CheckedTime string `json:"checked_time,omitempty"`

	// IsArchived - признак архивации.
	IsArchived bool `json:"is_archived"`

	// UserID - стажёр.
	UserID string `json:"user_id"`

	// TaskID - задание.
	TaskID string `json:"task_id"`
}

// ListSolutionsHandler handles the ListSolutionsQuery.
type ListSolutionsHandler struct {
	solutionRepo solution.Repository
}

// NewListSolutionsHandler creates a new ListSolutionsHandler.
func NewListSolutionsHandler(solutionRepo solution.Repository) *ListSolutionsHandler {
	return &ListSolutionsHandler{
		solutionRepo: solutionRepo,
	}
}

// Handle executes the list solutions query.
func (h *ListSolutionsHandler) Handle(ctx context.Context, q ListSolutionsQuery) ([]SolutionDTO, error) {
	solutions, err := h.load(ctx, q)
	if err != nil {
		return nil, err
	}

	result := make([]SolutionDTO, 0, len(solutions))
	for _, s := range solutions {
		result = append(result, toSolutionDTO(s))
	}
	return result, nil
}

func (h *ListSolutionsHandler) load(ctx context.Context, q ListSolutionsQuery) ([]*solution.Solution, error) {
	switch {
	case q.UserID != "":
		return h.solutionRepo.GetByUser(ctx, q.UserID)

	case q.TaskID != "":
		return h.solutionRepo.GetByTask(ctx, q.TaskID)

	case q.Status != "":
		status, err := solution.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		return h.solutionRepo.GetByStatus(ctx, status)

	default:
		all, err := h.solutionRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list_solutions: %w", err)
		}
		return all, nil
	}
}

func toSolutionDTO(s *solution.Solution) SolutionDTO {
	dto := SolutionDTO{
		ID:             s.ID,
		RepositoryURL:  s.RepositoryURL,
		LastCommitTime: timeutil.FormatMoscow(s.LastCommitTime, timeutil.FormatDateTimeSeconds),
		LastCommitURL:  s.LastCommitURL,
		Status:         s.Status.String(),
		Comment:        s.Comment,
		IsArchived:     s.IsArchived,
		UserID:         s.UserID,
		TaskID:         s.TaskID,
	}
	if s.CheckedTime != nil {
		dto.CheckedTime = timeutil.FormatMoscow(*s.CheckedTime, timeutil.FormatDateTimeSeconds)
	}
	return dto
}
