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
	"github.com/internship-hub/internship-service/internal/domain/user"
)

func reportIntern(id, username string) *user.User {
	return &user.User{
		ID:           id,
		Username:     username,
		Name:         "Intern " + username,
		Email:        username + "@example.com",
		Role:         user.RoleUser,
		InternshipID: "internship-1",
	}
}

func publishedTask(id, name string, publishedAt time.Time) *lesson.Task {
	return &lesson.Task{
		ID:            id,
		Name:          name,
		LessonID:      "lesson-1",
		RepositoryURL: "https://gitlab.example.com/internship/" + name,
		RepositoryID:  100,
		PublishDate:   &publishedAt,
	}
}

func TestGetReport_FullMatrix(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)

	userRepo := &stubUserRepo{users: []*user.User{
		reportIntern("user-1", "ivanov"),
		reportIntern("user-2", "petrov"),
	}}
	taskRepo := &stubTaskRepo{
		tasks: []*lesson.Task{
			publishedTask("task-1", "task-http-server", past),
			publishedTask("task-2", "task-sql", past),
		},
		internshipOf: map[string]string{"lesson-1": "internship-1"},
	}
	solutionRepo := &stubSolutionRepo{solutions: []*solution.Solution{
		{
			ID: "solution-1", UserID: "user-1", TaskID: "task-1",
			RepositoryURL:  "https://gitlab.example.com/ivanov/task-http-server",
			Status:         solution.StatusApproved,
			Comment:        "отлично",
			LastCommitTime: time.Date(2025, 4, 5, 11, 30, 0, 0, time.UTC),
			LastCommitURL:  "https://gitlab.example.com/ivanov/task-http-server/-/commit/abc123",
		},
	}}

	handler := NewGetReportHandler(userRepo, taskRepo, solutionRepo)

	report, err := handler.Handle(context.Background(), GetReportQuery{InternshipID: "internship-1"})
	require.NoError(t, err)

	// Отчёт полон: 2 стажёра x 2 задания.
	assert.Equal(t, 2, report.UserCount)
	assert.Equal(t, 2, report.TaskCount)
	require.Len(t, report.Rows, 4)

	byKey := make(map[string]ReportRowDTO, len(report.Rows))
	for _, row := range report.Rows {
		byKey[row.Username+"/"+row.TaskName] = row
	}

	approved := byKey["ivanov/task-http-server"]
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, "отлично", approved.Comment)
	// Московское время: UTC 11:30 -> 14:30.
	assert.Equal(t, "2025-04-05 14:30:00", approved.LastCommitTime)

	noSolution := byKey["petrov/task-sql"]
	assert.Equal(t, "NO_SOLUTION", noSolution.Status)
	assert.Empty(t, noSolution.LastCommitTime)
	assert.Empty(t, noSolution.LastCommitURL)
}

func TestGetReport_ArchivedSolutionBecomesNoSolution(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)

	userRepo := &stubUserRepo{users: []*user.User{reportIntern("user-1", "ivanov")}}
	taskRepo := &stubTaskRepo{
		tasks:        []*lesson.Task{publishedTask("task-1", "task-http-server", past)},
		internshipOf: map[string]string{"lesson-1": "internship-1"},
	}
	solutionRepo := &stubSolutionRepo{solutions: []*solution.Solution{
		{
			ID: "solution-1", UserID: "user-1", TaskID: "task-1",
			RepositoryURL: "https://gitlab.example.com/ivanov/task-http-server",
			Status:        solution.StatusApproved,
			IsArchived:    true,
		},
	}}

	handler := NewGetReportHandler(userRepo, taskRepo, solutionRepo)

	report, err := handler.Handle(context.Background(), GetReportQuery{InternshipID: "internship-1"})
	require.NoError(t, err)

	require.Len(t, report.Rows, 1)
	assert.Equal(t, "NO_SOLUTION", report.Rows[0].Status)
}

func TestGetReport_UnpublishedTasksExcluded(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	userRepo := &stubUserRepo{users: []*user.User{reportIntern("user-1", "ivanov")}}
	taskRepo := &stubTaskRepo{
		tasks: []*lesson.Task{
			publishedTask("task-1", "task-http-server", past),
			publishedTask("task-2", "task-scheduled", future),
			{ID: "task-3", Name: "task-draft", LessonID: "lesson-1"},
		},
		internshipOf: map[string]string{"lesson-1": "internship-1"},
	}

	handler := NewGetReportHandler(userRepo, taskRepo, &stubSolutionRepo{})

	report, err := handler.Handle(context.Background(), GetReportQuery{InternshipID: "internship-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.TaskCount)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, "task-http-server", report.Rows[0].TaskName)
}

func TestGetReport_NoInterns(t *testing.T) {
	handler := NewGetReportHandler(&stubUserRepo{}, &stubTaskRepo{}, &stubSolutionRepo{})

	_, err := handler.Handle(context.Background(), GetReportQuery{InternshipID: "internship-1"})
	assert.ErrorIs(t, err, shared.ErrInternshipNoUsers)
}

func TestGetReport_NoPublishedTasks(t *testing.T) {
	userRepo := &stubUserRepo{users: []*user.User{reportIntern("user-1", "ivanov")}}
	taskRepo := &stubTaskRepo{
		tasks:        []*lesson.Task{{ID: "task-1", Name: "task-draft", LessonID: "lesson-1"}},
		internshipOf: map[string]string{"lesson-1": "internship-1"},
	}

	handler := NewGetReportHandler(userRepo, taskRepo, &stubSolutionRepo{})

	_, err := handler.Handle(context.Background(), GetReportQuery{InternshipID: "internship-1"})
	assert.ErrorIs(t, err, shared.ErrInternshipNoTasks)
}
