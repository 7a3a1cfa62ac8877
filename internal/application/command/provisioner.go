// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
// Каждый хендлер объявляет интерфейсы своих внешних зависимостей здесь же,
// в слое приложения; инфраструктура их реализует.
package command

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROVISIONING DEPENDENCIES
// Контракт с GitLab, каким его видит слой приложения. Реализация - адаптер
// в infrastructure/service, оборачивающий клиент GitLab API.
// ══════════════════════════════════════════════════════════════════════════════

// RepositoryData describes a provisioned repository.
type RepositoryData struct {
	// ID is the project ID in GitLab.
	ID int64

	// Name is the project name.
	Name string

	// FullPath is the namespaced path ("group/project").
	FullPath string

	// WebURL is the browsable project URL.
	WebURL string

	// CloneURL is the HTTP clone URL.
	CloneURL string

	// DefaultBranch is the default branch name.
	DefaultBranch string

	// IsFork is true when the project has an upstream.
	IsFork bool

	// UpstreamID is the upstream project ID, zero for non-forks.
	UpstreamID int64
}

// AccountData describes a provisioned user account.
type AccountData struct {
	// ID is the account ID in GitLab.
	ID int64

	// Username is the account login and personal namespace.
	Username string

	// Name is the display name.
	Name string

	// Email is the account email.
	Email string

	// Blocked is true when the account is blocked.
	Blocked bool
}

// ProvisioningClient defines the GitLab operations the handlers need.
type ProvisioningClient interface {
	// CreateRepository creates a template repository for a task.
	// The repository is private and seeded with an initial commit so
	// it can be forked right away.
	CreateRepository(ctx context.Context, name, description string) (*RepositoryData, error)

	// ForkRepository forks a repository into a user's namespace.
	// Возвращает shared.ErrAlreadyExists, если форк уже существует:
	// вызывающая сторона трактует это как успех.
	ForkRepository(ctx context.Context, repositoryID int64, namespace string) (*RepositoryData, error)

	// IsForkedRepository reports whether the project has fork ancestry.
	IsForkedRepository(ctx context.Context, repositoryID int64) (bool, error)

	// CreateAccount creates a user account.
	CreateAccount(ctx context.Context, username, name, email, password string) (*AccountData, error)

	// BlockAccount blocks a user account by username.
	// Блокировка уже заблокированного аккаунта - no-op.
	BlockAccount(ctx context.Context, username string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a password hash suitable for storage.
	Hash(password string) (string, error)

	// Compare reports whether the password matches the stored hash.
	Compare(hash, password string) error
}
