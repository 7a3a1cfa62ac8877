package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
)

func listSolution(id, userID, taskID string, status solution.Status, archived bool) *solution.Solution {
	return &solution.Solution{
		ID:             id,
		RepositoryURL:  "https://gitlab.example.com/" + userID + "/" + taskID,
		LastCommitTime: time.Date(2025, 4, 5, 11, 30, 0, 0, time.UTC),
		LastCommitURL:  "https://gitlab.example.com/" + userID + "/" + taskID + "/-/commit/abc",
		Status:         status,
		UserID:         userID,
		TaskID:         taskID,
		IsArchived:     archived,
	}
}

func TestListSolutions_ByStatus(t *testing.T) {
	repo := &stubSolutionRepo{solutions: []*solution.Solution{
		listSolution("sol-1", "user-1", "task-1", solution.StatusSent, false),
		listSolution("sol-2", "user-2", "task-1", solution.StatusApproved, false),
		// Архивное решение не попадает в фильтр по статусу.
		listSolution("sol-3", "user-3", "task-1", solution.StatusSent, true),
	}}
	h := NewListSolutionsHandler(repo)

	result, err := h.Handle(context.Background(), ListSolutionsQuery{Status: "SENT"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "sol-1", result[0].ID)
	assert.Equal(t, "SENT", result[0].Status)
	// Время коммита отдаётся в московском поясе.
	assert.Equal(t, "2025-04-05 14:30:00", result[0].LastCommitTime)
}

func TestListSolutions_ByUserIncludesArchived(t *testing.T) {
	repo := &stubSolutionRepo{solutions: []*solution.Solution{
		listSolution("sol-1", "user-1", "task-1", solution.StatusApproved, false),
		listSolution("sol-2", "user-1", "task-2", solution.StatusSent, true),
		listSolution("sol-3", "user-2", "task-1", solution.StatusSent, false),
	}}
	h := NewListSolutionsHandler(repo)

	result, err := h.Handle(context.Background(), ListSolutionsQuery{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestListSolutions_UserFilterWins(t *testing.T) {
	repo := &stubSolutionRepo{solutions: []*solution.Solution{
		listSolution("sol-1", "user-1", "task-1", solution.StatusSent, false),
		listSolution("sol-2", "user-2", "task-2", solution.StatusSent, false),
	}}
	h := NewListSolutionsHandler(repo)

	// При нескольких фильтрах действует приоритет: UserID старше TaskID.
	result, err := h.Handle(context.Background(), ListSolutionsQuery{UserID: "user-1", TaskID: "task-2"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "sol-1", result[0].ID)
}

func TestListSolutions_InvalidStatus(t *testing.T) {
	h := NewListSolutionsHandler(&stubSolutionRepo{})

	_, err := h.Handle(context.Background(), ListSolutionsQuery{Status: "WHATEVER"})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidSolutionStatus)
}

func TestListSolutions_NoFilterReturnsAll(t *testing.T) {
	repo := &stubSolutionRepo{solutions: []*solution.Solution{
		listSolution("sol-1", "user-1", "task-1", solution.StatusSent, false),
		listSolution("sol-2", "user-2", "task-2", solution.StatusRejected, true),
	}}
	h := NewListSolutionsHandler(repo)

	result, err := h.Handle(context.Background(), ListSolutionsQuery{})
	require.NoError(t, err)
	assert.Len(t, result, 2)
}

func TestListPublished_GroupsTasksByLesson(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	lessons := &stubLessonRepo{lessons: []*lesson.Lesson{
		{ID: "lesson-1", Name: "HTTP basics", InternshipID: "internship-1", IsPublished: true},
		{ID: "lesson-2", Name: "SQL basics", InternshipID: "internship-1", IsPublished: true},
	}}
	tasks := &stubTaskRepo{tasks: []*lesson.Task{
		{ID: "task-1", Name: "task-http-server", LessonID: "lesson-1", PublishDate: &past},
		{ID: "task-2", Name: "task-http-client", LessonID: "lesson-1", PublishDate: &past},
		// Будущая дата публикации: стажёр этого задания ещё не видит.
		{ID: "task-3", Name: "task-sql", LessonID: "lesson-2", PublishDate: &future},
	}}
	h := NewListPublishedHandler(lessons, tasks)

	result, err := h.Handle(context.Background(), ListPublishedQuery{InternshipID: "internship-1"})
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "lesson-1", result[0].ID)
	assert.Len(t, result[0].Tasks, 2)

	// Занятие без доступных заданий отдаётся с пустым списком, не с nil.
	assert.Equal(t, "lesson-2", result[1].ID)
	assert.NotNil(t, result[1].Tasks)
	assert.Empty(t, result[1].Tasks)
}

func TestListPublished_UnpublishedLessonsHidden(t *testing.T) {
	lessons := &stubLessonRepo{lessons: []*lesson.Lesson{
		{ID: "lesson-1", Name: "Draft", InternshipID: "internship-1", IsPublished: false},
	}}
	h := NewListPublishedHandler(lessons, &stubTaskRepo{})

	result, err := h.Handle(context.Background(), ListPublishedQuery{InternshipID: "internship-1"})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestListPublished_EmptyInternshipID(t *testing.T) {
	h := NewListPublishedHandler(&stubLessonRepo{}, &stubTaskRepo{})

	_, err := h.Handle(context.Background(), ListPublishedQuery{})
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
}
