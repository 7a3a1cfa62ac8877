// Package gitlab implements the client for the self-hosted GitLab instance.
// This package handles all communication with GitLab: provisioning task
// repositories, forking them for interns, and managing intern accounts.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/circuitbreaker"
	"github.com/internship-hub/internship-service/pkg/logger"
	"github.com/internship-hub/internship-service/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the GitLab client.
type ClientConfig struct {
	// BaseURL is the GitLab instance base URL
	BaseURL string

	// Token is a private token with api scope
	Token string

	// Namespace is the group owning the reference task repositories
	Namespace string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// Retrier for transient failures; if nil a default is used
	Retrier *retry.Retrier

	// Breaker protects against a degraded instance; if nil a default is used
	Breaker *circuitbreaker.CircuitBreaker

	// Logger for structured logging
	Logger *logger.Logger

	// Debug enables request logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, token string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		Token:             token,
		Timeout:           30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the GitLab API client.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *logger.Logger
	rateLimiter *RateLimiter
	retrier     *retry.Retrier
	breaker     *circuitbreaker.CircuitBreaker
	mapper      *Mapper
}

// NewClient creates a new GitLab API client.
func NewClient(config ClientConfig) *Client {
	log := config.Logger
	if log == nil {
		log = logger.Default()
	}
	log = log.With(logger.Component("gitlab_client"))

	retrier := config.Retrier
	if retrier == nil {
		retrier = retry.GitlabRetrier()
	}

	breaker := config.Breaker
	if breaker == nil {
		breaker = circuitbreaker.GitlabBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		})
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      log,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		retrier:     retrier,
		breaker:     breaker,
		mapper:      NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CreateProject creates a new task repository under the configured namespace.
// The repository is seeded with a README so it can be forked immediately.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectDTO, error) {
	if req.Visibility == "" {
		req.Visibility = "private"
	}
	req.InitializeWithReadme = true

	var dto ProjectDTO
	if err := c.doRequest(ctx, http.MethodPost, "/api/v4/projects", req, &dto); err != nil {
		return nil, fmt.Errorf("create project %q: %w", req.Name, err)
	}

	c.logger.Info("project created",
		logger.ProjectID(dto.ID),
		logger.RepositoryURL(dto.WebURL))

	return &dto, nil
}

// GetProject fetches a project by its numeric ID.
func (c *Client) GetProject(ctx context.Context, projectID int64) (*ProjectDTO, error) {
	path := fmt.Sprintf("/api/v4/projects/%d", projectID)

	var dto ProjectDTO
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return nil, fmt.Errorf("get project %d: %w", projectID, err)
	}

	return &dto, nil
}

// GetProjectByPath fetches a project by its full path (namespace/project).
func (c *Client) GetProjectByPath(ctx context.Context, fullPath string) (*ProjectDTO, error) {
	path := "/api/v4/projects/" + url.PathEscape(fullPath)

	var dto ProjectDTO
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return nil, fmt.Errorf("get project %s: %w", fullPath, err)
	}

	return &dto, nil
}

// ForkProject forks a task repository into the given personal namespace.
// GitLab performs the fork asynchronously; the returned project may still
// be importing when this call returns.
func (c *Client) ForkProject(ctx context.Context, projectID int64, namespace string) (*ProjectDTO, error) {
	path := fmt.Sprintf("/api/v4/projects/%d/fork", projectID)
	req := ForkProjectRequest{Namespace: namespace}

	var dto ProjectDTO
	if err := c.doRequest(ctx, http.MethodPost, path, req, &dto); err != nil {
		return nil, fmt.Errorf("fork project %d into %s: %w", projectID, namespace, err)
	}

	c.logger.Info("project forked",
		logger.ProjectID(dto.ID),
		logger.String("namespace", namespace),
		logger.RepositoryURL(dto.WebURL))

	return &dto, nil
}

// IsForkedProject reports whether the project with the given ID is a fork.
func (c *Client) IsForkedProject(ctx context.Context, projectID int64) (bool, error) {
	dto, err := c.GetProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	return dto.IsFork(), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// USER OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CreateUser creates a GitLab account for a new intern.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	req.SkipConfirmation = true

	var dto UserDTO
	if err := c.doRequest(ctx, http.MethodPost, "/api/v4/users", req, &dto); err != nil {
		return nil, fmt.Errorf("create user %q: %w", req.Username, err)
	}

	c.logger.Info("user created",
		logger.Username(dto.Username),
		logger.Int64("user_id", dto.ID))

	return &dto, nil
}

// GetUserByUsername looks up a GitLab account by its username.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*UserDTO, error) {
	path := "/api/v4/users?username=" + url.QueryEscape(username)

	var dtos []UserDTO
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &dtos); err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}

	if len(dtos) == 0 {
		return nil, shared.WrapError("gitlab", "GetUserByUsername", shared.ErrNotFound,
			fmt.Sprintf("no account with username %q", username), nil)
	}

	return &dtos[0], nil
}

// BlockUser blocks a GitLab account by numeric ID.
// Blocked accounts cannot push, which stops further webhook traffic.
func (c *Client) BlockUser(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/api/v4/users/%d/block", userID)

	if err := c.doRequest(ctx, http.MethodPost, path, nil, nil); err != nil {
		return fmt.Errorf("block user %d: %w", userID, err)
	}

	c.logger.Info("user blocked", logger.Int64("user_id", userID))

	return nil
}

// BlockUserByUsername resolves a username to an account and blocks it.
func (c *Client) BlockUserByUsername(ctx context.Context, username string) error {
	dto, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if dto.IsBlocked() {
		// Already blocked: archival retries must not fail here
		return nil
	}
	return c.BlockUser(ctx, dto.ID)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPED CONVENIENCE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CreateRepository creates a task repository and maps it to the internal view.
func (c *Client) CreateRepository(ctx context.Context, req CreateProjectRequest) (*Repository, error) {
	dto, err := c.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.mapper.RepositoryFromDTO(dto)
}

// ForkRepository forks a repository and maps it to the internal view.
func (c *Client) ForkRepository(ctx context.Context, projectID int64, namespace string) (*Repository, error) {
	dto, err := c.ForkProject(ctx, projectID, namespace)
	if err != nil {
		return nil, err
	}
	return c.mapper.RepositoryFromDTO(dto)
}

// GetRepository fetches a project by ID and maps it to the internal view.
func (c *Client) GetRepository(ctx context.Context, projectID int64) (*Repository, error) {
	dto, err := c.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return c.mapper.RepositoryFromDTO(dto)
}

// GetAccount looks up an account by username and maps it to the internal view.
func (c *Client) GetAccount(ctx context.Context, username string) (*Account, error) {
	dto, err := c.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return c.mapper.AccountFromDTO(dto)
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs an HTTP request with rate limiting, circuit breaking,
// and retries on transient failures.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			if err := c.rateLimiter.Allow(ctx); err != nil {
				var rateLimitErr *RateLimitError
				if errors.As(err, &rateLimitErr) {
					return retry.Retryable(shared.WrapError("gitlab", "doRequest",
						shared.ErrGitlabRateLimited, "local rate limit exhausted", err))
				}
				return err
			}

			err := c.doSingleRequest(ctx, method, path, body, result)
			if err == nil {
				return nil
			}

			if c.isRetryable(err) {
				return retry.Retryable(err)
			}
			return retry.Permanent(err)
		})
	})
}

// doSingleRequest performs a single HTTP request.
func (c *Client) doSingleRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("PRIVATE-TOKEN", c.config.Token)

	if c.config.Debug {
		c.logger.Debug("gitlab api request",
			logger.String("method", method),
			logger.String("path", path))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return shared.WrapError("gitlab", "doSingleRequest", shared.ErrGitlabTimeout, "request timed out", err)
		}
		return shared.WrapError("gitlab", "doSingleRequest", shared.ErrGitlabUnavailable, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Handle rate limiting
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		c.rateLimiter.RecordRateLimitHit(retryAfter)
		return shared.WrapError("gitlab", "doSingleRequest", shared.ErrGitlabRateLimited,
			"rate limited by instance", &RateLimitError{
				RetryAfter: retryAfter,
				Message:    "rate limit exceeded",
			})
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		apiErr := &APIErrorDTO{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(respBody, apiErr)

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return shared.WrapError("gitlab", "doSingleRequest", shared.ErrNotFound, "resource not found", apiErr)
		case resp.StatusCode == http.StatusConflict:
			return shared.WrapError("gitlab", "doSingleRequest", shared.ErrAlreadyExists, "resource already exists", apiErr)
		case resp.StatusCode >= 500:
			return shared.WrapError("gitlab", "doSingleRequest", shared.ErrGitlabUnavailable, "instance error", apiErr)
		default:
			return shared.WrapError("gitlab", "doSingleRequest", shared.ErrProvisioning, "request rejected", apiErr)
		}
	}

	// Unmarshal response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// isRetryable checks if an error is worth retrying.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, shared.ErrGitlabRateLimited) ||
		errors.Is(err, shared.ErrGitlabUnavailable) ||
		errors.Is(err, shared.ErrGitlabTimeout) {
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH AND STATUS
// ══════════════════════════════════════════════════════════════════════════════

// IsHealthy checks if the GitLab instance is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	var version struct {
		Version string `json:"version"`
	}
	err := c.doSingleRequest(ctx, http.MethodGet, "/api/v4/version", nil, &version)
	return err == nil
}

// ClientStatus contains the current status of the client.
type ClientStatus struct {
	RateLimiter  RateLimiterStatus
	BreakerState circuitbreaker.State
	IsHealthy    bool
}

// Status returns the current status of the client.
func (c *Client) Status(ctx context.Context) ClientStatus {
	return ClientStatus{
		RateLimiter:  c.rateLimiter.Status(),
		BreakerState: c.breaker.State(),
		IsHealthy:    c.IsHealthy(ctx),
	}
}

// Reset resets the rate limiter and circuit breaker.
func (c *Client) Reset() {
	c.rateLimiter.Reset()
	c.breaker.Reset()
}
