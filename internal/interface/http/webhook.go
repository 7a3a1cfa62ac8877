package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GITLAB WEBHOOK
// ══════════════════════════════════════════════════════════════════════════════

// gitlabPushEvent mirrors the subset of GitLab's push event payload the
// service consumes. Field names follow GitLab's webhook documentation.
type gitlabPushEvent struct {
	ObjectKind string `json:"object_kind"`
	Project    struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Namespace string `json:"namespace"`
		WebURL    string `json:"web_url"`
	} `json:"project"`
	Commits []struct {
		ID        string `json:"id"`
		URL       string `json:"url"`
		Timestamp string `json:"timestamp"`
	} `json:"commits"`
	TotalCommitsCount int `json:"total_commits_count"`
}

// handleGitlabWebhook ingests a push event. Pushes that cannot be traced
// to an intern's task fork are acknowledged with 200 and ignored, so
// GitLab does not retry them forever.
func (s *Server) handleGitlabWebhook(w http.ResponseWriter, r *http.Request) {
	if s.config.WebhookToken != "" {
		token := r.Header.Get("X-Gitlab-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.config.WebhookToken)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid webhook token")
			return
		}
	}

	var event gitlabPushEvent
	if err := decodeJSON(r, &event); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid JSON body")
		return
	}

	if event.ObjectKind != "" && event.ObjectKind != "push" {
		writeJSON(w, http.StatusOK, map[string]string{"result": "ignored", "reason": "unsupported event kind"})
		return
	}

	cmd := command.IngestPushCommand{
		ProjectID:         event.Project.ID,
		ProjectName:       event.Project.Name,
		Namespace:         event.Project.Namespace,
		RepositoryURL:     event.Project.WebURL,
		TotalCommitsCount: event.TotalCommitsCount,
	}
	for _, c := range event.Commits {
		cmd.Commits = append(cmd.Commits, command.PushCommit{
			SHA:       c.ID,
			URL:       c.URL,
			Timestamp: c.Timestamp,
		})
	}

	result, err := s.deps.IngestPush.Handle(r.Context(), cmd)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUntracedPush),
			errors.Is(err, shared.ErrEmptyPush),
			errors.Is(err, shared.ErrUserArchived):
			// Not an error from GitLab's point of view: the event is
			// simply not ours to process.
			s.log.Debug("push event ignored",
				logger.ProjectID(event.Project.ID),
				logger.String("namespace", event.Project.Namespace),
				logger.Err(err),
			)
			writeJSON(w, http.StatusOK, map[string]string{"result": "ignored", "reason": err.Error()})
			return
		default:
			writeDomainError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":      "processed",
		"solution_id": result.SolutionID,
		"created":     result.Created,
	})
}
