package gitlab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/retry"
)

func TestProjectDTO_Parsing(t *testing.T) {
	jsonData := `{
    "id": 248,
    "name": "task-http-server",
    "path": "task-http-server",
    "path_with_namespace": "ivanov/task-http-server",
    "web_url": "https://gitlab.example.com/ivanov/task-http-server",
    "http_url_to_repo": "https://gitlab.example.com/ivanov/task-http-server.git",
    "default_branch": "main",
    "namespace": {
        "id": 42,
        "name": "ivanov",
        "path": "ivanov",
        "kind": "user",
        "full_path": "ivanov"
    },
    "forked_from_project": {
        "id": 101,
        "name": "task-http-server",
        "path_with_namespace": "internship/task-http-server",
        "web_url": "https://gitlab.example.com/internship/task-http-server"
    },
    "created_at": "2025-03-01T10:00:00Z"
}`

	var project ProjectDTO
	err := json.Unmarshal([]byte(jsonData), &project)
	require.NoError(t, err)

	assert.Equal(t, int64(248), project.ID)
	assert.Equal(t, "ivanov/task-http-server", project.PathWithNamespace)
	assert.True(t, project.IsFork())
	assert.Equal(t, int64(101), project.ForkedFromProject.ID)
	assert.Equal(t, "user", project.Namespace.Kind)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultClientConfig(server.URL, "test-token")
	config.Retrier = retry.New(retry.WithMaxAttempts(1))

	return NewClient(config), server
}

func TestClient_ForkProject(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v4/projects/101/fork", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("PRIVATE-TOKEN"))

		var req ForkProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ivanov", req.Namespace)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ProjectDTO{
			ID:                248,
			Name:              "task-http-server",
			PathWithNamespace: "ivanov/task-http-server",
			WebURL:            "https://gitlab.example.com/ivanov/task-http-server",
			ForkedFromProject: &ForkParentDTO{ID: 101},
		})
	}))

	project, err := client.ForkProject(context.Background(), 101, "ivanov")
	require.NoError(t, err)
	assert.Equal(t, int64(248), project.ID)
	assert.True(t, project.IsFork())
}

func TestClient_CreateProject_SeedsReadme(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/projects", r.URL.Path)

		var req CreateProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.InitializeWithReadme)
		assert.Equal(t, "private", req.Visibility)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ProjectDTO{ID: 101, Name: req.Name})
	}))

	project, err := client.CreateProject(context.Background(), CreateProjectRequest{Name: "task-http-server"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), project.ID)
}

func TestClient_GetUserByUsername(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v4/users", r.URL.Path)
		assert.Equal(t, "ivanov", r.URL.Query().Get("username"))

		_ = json.NewEncoder(w).Encode([]UserDTO{
			{ID: 7, Username: "ivanov", State: "active"},
		})
	}))

	user, err := client.GetUserByUsername(context.Background(), "ivanov")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.False(t, user.IsBlocked())
}

func TestClient_GetUserByUsername_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]UserDTO{})
	}))

	_, err := client.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClient_BlockUserByUsername_AlreadyBlocked(t *testing.T) {
	blockCalled := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v4/users":
			_ = json.NewEncoder(w).Encode([]UserDTO{
				{ID: 7, Username: "ivanov", State: "blocked"},
			})
		default:
			blockCalled = true
			w.WriteHeader(http.StatusCreated)
		}
	}))

	err := client.BlockUserByUsername(context.Background(), "ivanov")
	require.NoError(t, err)
	assert.False(t, blockCalled, "blocking an already blocked account must be a no-op")
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{"not found", http.StatusNotFound, shared.ErrNotFound},
		{"conflict", http.StatusConflict, shared.ErrAlreadyExists},
		{"server error", http.StatusInternalServerError, shared.ErrGitlabUnavailable},
		{"bad request", http.StatusBadRequest, shared.ErrProvisioning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"message": "nope"}`))
			}))

			_, err := client.GetProject(context.Background(), 1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMapper_RepositoryFromDTO(t *testing.T) {
	mapper := NewMapper()

	repo, err := mapper.RepositoryFromDTO(&ProjectDTO{
		ID:                248,
		Name:              "task-http-server",
		PathWithNamespace: "ivanov/task-http-server",
		WebURL:            "https://gitlab.example.com/ivanov/task-http-server",
		HTTPURLToRepo:     "https://gitlab.example.com/ivanov/task-http-server.git",
		DefaultBranch:     "main",
		ForkedFromProject: &ForkParentDTO{ID: 101},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(248), repo.ID)
	assert.True(t, repo.IsFork)
	assert.Equal(t, int64(101), repo.UpstreamID)

	_, err = mapper.RepositoryFromDTO(nil)
	assert.ErrorIs(t, err, ErrNilDTO)
}
