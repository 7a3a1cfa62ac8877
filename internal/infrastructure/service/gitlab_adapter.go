// Package service contains adapters binding infrastructure clients to the
// interfaces declared by the application layer.
package service

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/application/command"
	"github.com/internship-hub/internship-service/internal/infrastructure/external/gitlab"
	"github.com/internship-hub/internship-service/internal/infrastructure/persistence/redis"
	"github.com/internship-hub/internship-service/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// GITLAB PROVISIONING ADAPTER
// Implements command.ProvisioningClient on top of the GitLab API client.
// Fork-ancestry verdicts go through the Redis cache: ancestry is immutable
// for a live project, so one API round-trip per project is enough.
// ══════════════════════════════════════════════════════════════════════════════

// GitlabAdapter adapts gitlab.Client to the application layer.
type GitlabAdapter struct {
	client    *gitlab.Client
	forkCache *redis.ForkCache
	log       *logger.Logger
}

// NewGitlabAdapter creates a new GitlabAdapter.
// forkCache may be nil; verdicts are then fetched from the API every time.
func NewGitlabAdapter(client *gitlab.Client, forkCache *redis.ForkCache, log *logger.Logger) *GitlabAdapter {
	if log == nil {
		log = logger.Default()
	}
	return &GitlabAdapter{
		client:    client,
		forkCache: forkCache,
		log:       log.With(logger.Component("gitlab_adapter")),
	}
}

// CreateRepository creates a private template repository for a task.
func (a *GitlabAdapter) CreateRepository(ctx context.Context, name, description string) (*command.RepositoryData, error) {
	repo, err := a.client.CreateRepository(ctx, gitlab.CreateProjectRequest{
		Name:        name,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	return toRepositoryData(repo), nil
}

// ForkRepository forks a repository into a user's namespace.
func (a *GitlabAdapter) ForkRepository(ctx context.Context, repositoryID int64, namespace string) (*command.RepositoryData, error) {
	repo, err := a.client.ForkRepository(ctx, repositoryID, namespace)
	if err != nil {
		return nil, err
	}

	// Свежий форк сразу попадает в кеш: его первый пуш не должен ходить
	// в API за вердиктом.
	if a.forkCache != nil {
		if cacheErr := a.forkCache.Set(ctx, repo.ID, true); cacheErr != nil {
			a.log.Warn("failed to cache fork verdict", logger.ProjectID(repo.ID), logger.Err(cacheErr))
		}
	}

	return toRepositoryData(repo), nil
}

// IsForkedRepository reports whether the project has fork ancestry,
// consulting the cache first.
func (a *GitlabAdapter) IsForkedRepository(ctx context.Context, repositoryID int64) (bool, error) {
	if a.forkCache != nil {
		verdict, ok, err := a.forkCache.Get(ctx, repositoryID)
		if err != nil {
			a.log.Warn("fork cache lookup failed", logger.ProjectID(repositoryID), logger.Err(err))
		} else if ok {
			return verdict, nil
		}
	}

	isFork, err := a.client.IsForkedProject(ctx, repositoryID)
	if err != nil {
		return false, fmt.Errorf("gitlab_adapter: fork check failed: %w", err)
	}

	if a.forkCache != nil {
		if cacheErr := a.forkCache.Set(ctx, repositoryID, isFork); cacheErr != nil {
			a.log.Warn("failed to cache fork verdict", logger.ProjectID(repositoryID), logger.Err(cacheErr))
		}
	}

	return isFork, nil
}

// CreateAccount creates a GitLab user account.
func (a *GitlabAdapter) CreateAccount(ctx context.Context, username, name, email, password string) (*command.AccountData, error) {
	account, err := a.client.CreateUser(ctx, gitlab.CreateUserRequest{
		Email:    email,
		Username: username,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	return &command.AccountData{
		ID:       account.ID,
		Username: account.Username,
		Name:     account.Name,
		Email:    account.Email,
		Blocked:  account.IsBlocked(),
	}, nil
}

// BlockAccount blocks a GitLab account by username.
func (a *GitlabAdapter) BlockAccount(ctx context.Context, username string) error {
	return a.client.BlockUserByUsername(ctx, username)
}

func toRepositoryData(repo *gitlab.Repository) *command.RepositoryData {
	return &command.RepositoryData{
		ID:            repo.ID,
		Name:          repo.Name,
		FullPath:      repo.FullPath,
		WebURL:        repo.WebURL,
		CloneURL:      repo.CloneURL,
		DefaultBranch: repo.DefaultBranch,
		IsFork:        repo.IsFork,
		UpstreamID:    repo.UpstreamID,
	}
}
