package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

// ─────────────────────────────────────────────────────────────────────────────
// Минимальные стабы для сборки настоящего IngestPushHandler: вебхук
// тестируется через полный путь команды, а не мимо него.
// ─────────────────────────────────────────────────────────────────────────────

type stubUserRepo struct{ users map[string]*user.User }

func (r *stubUserRepo) Create(context.Context, *user.User) error { return nil }
func (r *stubUserRepo) Update(context.Context, *user.User) error { return nil }
func (r *stubUserRepo) GetByID(context.Context, string) (*user.User, error) {
	return nil, shared.ErrUserNotFound
}
func (r *stubUserRepo) GetByEmail(context.Context, string) (*user.User, error) {
	return nil, shared.ErrUserNotFound
}
func (r *stubUserRepo) GetAll(context.Context) ([]*user.User, error) { return nil, nil }
func (r *stubUserRepo) GetByInternshipAndRole(context.Context, string, user.Role) ([]*user.User, error) {
	return nil, nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, shared.ErrUserNotFound
}

type stubTaskRepo struct{ tasks map[string]*lesson.Task }

func (r *stubTaskRepo) Create(context.Context, *lesson.Task) error { return nil }
func (r *stubTaskRepo) Update(context.Context, *lesson.Task) error { return nil }
func (r *stubTaskRepo) GetByID(context.Context, string) (*lesson.Task, error) {
	return nil, shared.ErrTaskNotFound
}
func (r *stubTaskRepo) GetAll(context.Context) ([]*lesson.Task, error) { return nil, nil }
func (r *stubTaskRepo) GetPublished(context.Context, time.Time) ([]*lesson.Task, error) {
	return nil, nil
}
func (r *stubTaskRepo) GetUnpublishedByLesson(context.Context, string) ([]*lesson.Task, error) {
	return nil, nil
}
func (r *stubTaskRepo) GetByInternship(context.Context, string) ([]*lesson.Task, error) {
	return nil, nil
}

func (r *stubTaskRepo) GetByName(_ context.Context, name string) (*lesson.Task, error) {
	if t, ok := r.tasks[name]; ok {
		return t, nil
	}
	return nil, shared.ErrTaskNotFound
}

type stubSolutionRepo struct{ byURL map[string]*solution.Solution }

func (r *stubSolutionRepo) Create(_ context.Context, s *solution.Solution) error {
	if _, ok := r.byURL[s.RepositoryURL]; ok {
		return shared.ErrSolutionExists
	}
	r.byURL[s.RepositoryURL] = s
	return nil
}

func (r *stubSolutionRepo) GetByRepositoryURL(_ context.Context, repositoryURL string) (*solution.Solution, error) {
	if s, ok := r.byURL[repositoryURL]; ok {
		return s, nil
	}
	return nil, shared.ErrSolutionNotFound
}

func (r *stubSolutionRepo) Update(_ context.Context, s *solution.Solution) error {
	r.byURL[s.RepositoryURL] = s
	return nil
}

func (r *stubSolutionRepo) GetByID(context.Context, string) (*solution.Solution, error) {
	return nil, shared.ErrSolutionNotFound
}
func (r *stubSolutionRepo) GetAll(context.Context) ([]*solution.Solution, error) { return nil, nil }
func (r *stubSolutionRepo) GetByStatus(context.Context, solution.Status) ([]*solution.Solution, error) {
	return nil, nil
}
func (r *stubSolutionRepo) GetByTask(context.Context, string) ([]*solution.Solution, error) {
	return nil, nil
}
func (r *stubSolutionRepo) GetByUser(context.Context, string) ([]*solution.Solution, error) {
	return nil, nil
}
func (r *stubSolutionRepo) GetByUserAndTasks(context.Context, string, []string) ([]*solution.Solution, error) {
	return nil, nil
}
func (r *stubSolutionRepo) ArchiveByUser(context.Context, string) error { return nil }

type stubProvisioner struct{ verdicts map[int64]bool }

func (p *stubProvisioner) CreateRepository(context.Context, string, string) (*command.RepositoryData, error) {
	return nil, nil
}
func (p *stubProvisioner) ForkRepository(context.Context, int64, string) (*command.RepositoryData, error) {
	return nil, nil
}
func (p *stubProvisioner) CreateAccount(context.Context, string, string, string, string) (*command.AccountData, error) {
	return nil, nil
}
func (p *stubProvisioner) BlockAccount(context.Context, string) error { return nil }

func (p *stubProvisioner) IsForkedRepository(_ context.Context, repositoryID int64) (bool, error) {
	return p.verdicts[repositoryID], nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FIXTURE
// ─────────────────────────────────────────────────────────────────────────────

func newTestServer(t *testing.T, cfg Config) (*Server, *stubSolutionRepo) {
	t.Helper()

	publishDate := time.Now().Add(-24 * time.Hour)
	solutions := &stubSolutionRepo{byURL: make(map[string]*solution.Solution)}

	ingest := command.NewIngestPushHandler(
		solutions,
		&stubTaskRepo{tasks: map[string]*lesson.Task{
			"task-http-server": {
				ID: "task-1", Name: "task-http-server", LessonID: "lesson-1",
				RepositoryURL: "https://gitlab.example.com/internship/task-http-server",
				RepositoryID:  101,
				PublishDate:   &publishDate,
			},
		}},
		&stubUserRepo{users: map[string]*user.User{
			"ivanov": {ID: "user-1", Username: "ivanov", Role: user.RoleUser, InternshipID: "internship-1"},
		}},
		&stubProvisioner{verdicts: map[int64]bool{248: true}},
		nil,
	)

	return NewServer(cfg, Dependencies{IngestPush: ingest}), solutions
}

func pushPayload(t *testing.T) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"object_kind": "push",
		"project": map[string]interface{}{
			"id":        248,
			"name":      "task-http-server",
			"namespace": "ivanov",
			"web_url":   "https://gitlab.example.com/ivanov/task-http-server",
		},
		"commits": []map[string]interface{}{
			{
				"id":        "abc123",
				"url":       "https://gitlab.example.com/ivanov/task-http-server/-/commit/abc123",
				"timestamp": "2025-04-05T14:30:00+03:00",
			},
		},
		"total_commits_count": 1,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.buildMiddlewareChain(s.router).ServeHTTP(rec, req)
	return rec
}

// ─────────────────────────────────────────────────────────────────────────────
// TESTS
// ─────────────────────────────────────────────────────────────────────────────

func TestWebhook_ProcessesPush(t *testing.T) {
	s, solutions := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(pushPayload(t)))
	rec := doRequest(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	stored, ok := solutions.byURL["https://gitlab.example.com/ivanov/task-http-server"]
	require.True(t, ok)
	assert.Equal(t, solution.StatusSent, stored.Status)
}

func TestWebhook_TokenRequired(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WebhookToken = "hook-secret"
	s, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(pushPayload(t)))
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(pushPayload(t)))
	req.Header.Set("X-Gitlab-Token", "wrong")
	rec = doRequest(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(pushPayload(t)))
	req.Header.Set("X-Gitlab-Token", "hook-secret")
	rec = doRequest(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_UntracedPushAcknowledged(t *testing.T) {
	s, solutions := newTestServer(t, DefaultConfig())

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(pushPayload(t), &payload))
	// Пуш в шаблонный репозиторий: вердикт форка для него отрицательный.
	payload["project"].(map[string]interface{})["id"] = 101
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(body))
	rec := doRequest(s, req)

	// GitLab получает 200, чтобы не ретраить событие вечно.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, solutions.byURL)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ignored", data["result"])
}

func TestWebhook_NonPushEventIgnored(t *testing.T) {
	s, solutions := newTestServer(t, DefaultConfig())

	body := []byte(`{"object_kind":"merge_request"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader(body))
	rec := doRequest(s, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, solutions.byURL)
}

func TestWebhook_InvalidBody(t *testing.T) {
	s, _ := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/webhook/gitlab", bytes.NewReader([]byte("{not json")))
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyGuard(t *testing.T) {
	cfg := DefaultConfig()
	cfg.APIKeys = []string{"admin-key"}
	s, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/solutions", nil)
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/solutions", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = doRequest(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := doRequest(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Другой клиент не задет чужим лимитом.
	assert.True(t, rl.Allow("10.0.0.2"))
}
