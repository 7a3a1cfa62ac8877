// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET REPORT QUERY
// Сводный отчёт по стажировке: декартово произведение "стажёр x задание".
// Для пары без решения строится виртуальная строка NO_SOLUTION - отчёт
// всегда полон, пустых клеток в нём нет.
// ══════════════════════════════════════════════════════════════════════════════

// GetReportQuery contains the parameters of the report.
type GetReportQuery struct {
	// InternshipID - стажировка, по которой строится отчёт.
	InternshipID string
}

// Validate проверяет корректность параметров.
func (q GetReportQuery) Validate() error {
	if q.InternshipID == "" {
		return shared.NewDomainError("internship", "Report", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return nil
}

// ReportRowDTO - одна строка отчёта: состояние решения одного стажёра
// по одному заданию.
type ReportRowDTO struct {
	// Username - логин стажёра.
	Username string `json:"username"`

	// UserName - отображаемое имя стажёра.
	UserName string `json:"user_name"`

	// TaskName - название задания.
	TaskName string `json:"task_name"`

	// Status - статус решения; NO_SOLUTION, если решения нет.
	Status string `json:"status"`

	// LastCommitTime - время последнего коммита; пусто для NO_SOLUTION.
	LastCommitTime string `json:"last_commit_time,omitempty"`

	// LastCommitURL - ссылка на последний коммит; пусто для NO_SOLUTION.
	LastCommitURL string `json:"last_commit_url,omitempty"`

	// Comment - комментарий проверяющего.
	Comment string `json:"comment,omitempty"`
}

// ReportDTO - полный отчёт по стажировке.
type ReportDTO struct {
	// InternshipID - стажировка.
	InternshipID string `json:"internship_id"`

	// GeneratedAt - время построения отчёта.
	GeneratedAt time.Time `json:"generated_at"`

	// UserCount - число стажёров в отчёте.
	UserCount int `json:"user_count"`

	// TaskCount - число опубликованных заданий в отчёте.
	TaskCount int `json:"task_count"`

	// Rows - строки отчёта, сгруппированные по стажёрам.
	Rows []ReportRowDTO `json:"rows"`
}

// GetReportHandler handles the GetReportQuery.
type GetReportHandler struct {
	userRepo     user.Repository
	taskRepo     lesson.TaskRepository
	solutionRepo solution.Repository
}

// NewGetReportHandler creates a new GetReportHandler.
func NewGetReportHandler(
	userRepo user.Repository,
	taskRepo lesson.TaskRepository,
	solutionRepo solution.Repository,
) *GetReportHandler {
	return &GetReportHandler{
		userRepo:     userRepo,
		taskRepo:     taskRepo,
		solutionRepo: solutionRepo,
	}
}

// Handle builds the internship report.
func (h *GetReportHandler) Handle(ctx context.Context, q GetReportQuery) (*ReportDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	interns, err := h.userRepo.GetByInternshipAndRole(ctx, q.InternshipID, user.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("get_report: failed to list interns: %w", err)
	}
	if len(interns) == 0 {
		return nil, shared.ErrInternshipNoUsers
	}

	now := timeutil.Now()
	tasks, err := h.publishedTasks(ctx, q.InternshipID, now)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, shared.ErrInternshipNoTasks
	}

	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID
	}

	report := &ReportDTO{
		InternshipID: q.InternshipID,
		GeneratedAt:  now,
		UserCount:    len(interns),
		TaskCount:    len(tasks),
		Rows:         make([]ReportRowDTO, 0, len(interns)*len(tasks)),
	}

	for _, in := range interns {
		solutions, err := h.solutionRepo.GetByUserAndTasks(ctx, in.ID, taskIDs)
		if err != nil {
			return nil, fmt.Errorf("get_report: failed to load solutions for %s: %w", in.Username, err)
		}

		byTask := make(map[string]*solution.Solution, len(solutions))
		for _, s := range solutions {
			if !s.IsArchived {
				byTask[s.TaskID] = s
			}
		}

		for _, t := range tasks {
			report.Rows = append(report.Rows, buildRow(in, t, byTask[t.ID]))
		}
	}

	return report, nil
}

// publishedTasks returns the internship's tasks published as of now.
func (h *GetReportHandler) publishedTasks(ctx context.Context, internshipID string, now time.Time) ([]*lesson.Task, error) {
	all, err := h.taskRepo.GetByInternship(ctx, internshipID)
	if err != nil {
		return nil, fmt.Errorf("get_report: failed to list tasks: %w", err)
	}

	published := make([]*lesson.Task, 0, len(all))
	for _, t := range all {
		if t.IsPublished(now) {
			published = append(published, t)
		}
	}
	return published, nil
}

// buildRow builds one report row; s is nil when the intern has no solution.
func buildRow(in *user.User, t *lesson.Task, s *solution.Solution) ReportRowDTO {
	row := ReportRowDTO{
		Username: in.Username,
		UserName: in.Name,
		TaskName: t.Name,
		Status:   solution.StatusNoSolution.String(),
	}
	if s == nil {
		return row
	}

	row.Status = s.Status.String()
	row.LastCommitTime = timeutil.FormatMoscow(s.LastCommitTime, timeutil.FormatDateTimeSeconds)
	row.LastCommitURL = s.LastCommitURL
	row.Comment = s.Comment
	return row
}
