package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/internal/application/query"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

type createInternshipRequest struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	RegistrationStart string `json:"registration_start"`
	RegistrationEnd   string `json:"registration_end"`
	Start             string `json:"start"`
	End               string `json:"end"`
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

type submitApplicationRequest struct {
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	Email        string `json:"email"`
	InternshipID string `json:"internship_id"`
}

type reviewApplicationRequest struct {
	Status string `json:"status"`
}

type registerUserRequest struct {
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	InternshipID string `json:"internship_id"`
}

type createLessonRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	InternshipID string `json:"internship_id"`
}

type createTaskRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LessonID    string `json:"lesson_id"`
}

type reviewSolutionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNSHIP HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateInternship(w http.ResponseWriter, r *http.Request) {
	var req createInternshipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	dates, err := parseDates(req.RegistrationStart, req.RegistrationEnd, req.Start, req.End)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_date", err.Error())
		return
	}

	result, err := s.deps.CreateInternship.Handle(r.Context(), command.CreateInternshipCommand{
		Name:              req.Name,
		Description:       req.Description,
		RegistrationStart: dates[0],
		RegistrationEnd:   dates[1],
		Start:             dates[2],
		End:               dates[3],
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"internship_id": result.InternshipID,
		"status":        result.Status,
		"created_at":    timeutil.FormatDateTimeStr(result.CreatedAt),
	})
}

func (s *Server) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	err := s.deps.ChangeStatus.Handle(r.Context(), command.ChangeInternshipStatusCommand{
		InternshipID: r.PathValue("id"),
		Status:       req.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": strings.ToUpper(req.Status)})
}

func (s *Server) handleListInternships(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.ListInternships.Handle(r.Context(), query.ListInternshipsQuery{
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.deps.GetReport.Handle(r.Context(), query.GetReportQuery{
		InternshipID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListPublished(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.deps.ListPublished.Handle(r.Context(), query.ListPublishedQuery{
		InternshipID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lessons)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.SubmitApplication.Handle(r.Context(), command.SubmitApplicationCommand{
		Name:         req.Name,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		InternshipID: req.InternshipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Resubmitted {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]interface{}{
		"application_id": result.ApplicationID,
		"resubmitted":    result.Resubmitted,
	})
}

func (s *Server) handleReviewApplication(w http.ResponseWriter, r *http.Request) {
	var req reviewApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	err := s.deps.ReviewApplication.Handle(r.Context(), command.ReviewApplicationCommand{
		ApplicationID: r.PathValue("id"),
		Status:        req.Status,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": strings.ToUpper(req.Status)})
}

// ══════════════════════════════════════════════════════════════════════════════
// USER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.RegisterUser.Handle(r.Context(), command.RegisterUserCommand{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		InternshipID: req.InternshipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user_id":           result.UserID,
		"gitlab_account_id": result.GitlabAccountID,
	})
}

func (s *Server) handleArchiveUser(w http.ResponseWriter, r *http.Request) {
	err := s.deps.ArchiveUser.Handle(r.Context(), command.ArchiveUserCommand{
		UserID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ARCHIVED"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LESSON & TASK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req createLessonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.CreateLesson.Handle(r.Context(), command.CreateLessonCommand{
		Name:         req.Name,
		Description:  req.Description,
		InternshipID: req.InternshipID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"lesson_id": result.LessonID})
}

func (s *Server) handlePublishLesson(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.PublishLesson.Handle(r.Context(), command.PublishLessonCommand{
		LessonID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"lesson_id":    result.LessonID,
		"published_at": timeutil.FormatDateTimeStr(result.PublishedAt),
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.CreateTask.Handle(r.Context(), command.CreateTaskCommand{
		Name:        req.Name,
		Description: req.Description,
		LessonID:    req.LessonID,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"task_id":        result.TaskID,
		"repository_url": result.RepositoryURL,
		"repository_id":  result.RepositoryID,
	})
}

func (s *Server) handlePublishTask(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.PublishTask.Handle(r.Context(), command.PublishTaskCommand{
		TaskID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"task_id":        result.TaskID,
		"published_at":   timeutil.FormatDateTimeStr(result.PublishedAt),
		"forked_count":   result.ForkedCount,
		"deferred_count": result.DeferredCount,
	})
}

func (s *Server) handlePublishLessonTasks(w http.ResponseWriter, r *http.Request) {
	result, err := s.deps.PublishLessonTasks.Handle(r.Context(), command.PublishLessonTasksCommand{
		LessonID: r.PathValue("id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"published_task_ids": result.PublishedTaskIDs,
		"forked_count":       result.ForkedCount,
		"deferred_count":     result.DeferredCount,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SOLUTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	solutions, err := s.deps.ListSolutions.Handle(r.Context(), query.ListSolutionsQuery{
		Status: q.Get("status"),
		TaskID: q.Get("task_id"),
		UserID: q.Get("user_id"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, solutions)
}

func (s *Server) handleReviewSolution(w http.ResponseWriter, r *http.Request) {
	var req reviewSolutionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	result, err := s.deps.ReviewSolution.Handle(r.Context(), command.ReviewSolutionCommand{
		SolutionID: r.PathValue("id"),
		Status:     req.Status,
		Comment:    req.Comment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"solution_id":  result.SolutionID,
		"status":       result.Status,
		"checked_time": timeutil.FormatMoscow(result.CheckedTime, timeutil.FormatDateTimeSeconds),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.handleHealth(w, r)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(s.startedAt).String(),
	})
}

// parseDates parses the four internship boundary dates, returned in the
// order they were given.
func parseDates(values ...string) ([]time.Time, error) {
	parsed := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := timeutil.ParseDateMoscow(v)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, t)
	}
	return parsed, nil
}
