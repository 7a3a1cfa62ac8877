// Package gitlab implements the client for the self-hosted GitLab instance.
// This package handles all communication with GitLab: provisioning task
// repositories, forking them for interns, and managing intern accounts.
package gitlab

import (
	"fmt"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ProjectDTO represents a project as returned by the GitLab API.
// This is the external representation that is mapped to our domain model.
type ProjectDTO struct {
	// ID is the numeric project identifier in GitLab
	ID int64 `json:"id"`

	// Name is the project name
	Name string `json:"name"`

	// Path is the URL-safe project path
	Path string `json:"path"`

	// PathWithNamespace is the full path including the owning namespace
	PathWithNamespace string `json:"path_with_namespace"`

	// WebURL is the browsable URL of the project
	WebURL string `json:"web_url"`

	// HTTPURLToRepo is the clone URL over HTTPS
	HTTPURLToRepo string `json:"http_url_to_repo"`

	// SSHURLToRepo is the clone URL over SSH
	SSHURLToRepo string `json:"ssh_url_to_repo"`

	// DefaultBranch is the default branch name
	DefaultBranch string `json:"default_branch,omitempty"`

	// Description is the project description
	Description string `json:"description,omitempty"`

	// Namespace is the owning namespace (group or user)
	Namespace *NamespaceDTO `json:"namespace,omitempty"`

	// ForkedFromProject is set when this project is a fork
	ForkedFromProject *ForkParentDTO `json:"forked_from_project,omitempty"`

	// CreatedAt is when the project was created
	CreatedAt time.Time `json:"created_at"`
}

// IsFork reports whether the project was created by forking another project.
func (p *ProjectDTO) IsFork() bool {
	return p.ForkedFromProject != nil
}

// NamespaceDTO represents the namespace owning a project.
type NamespaceDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	FullPath string `json:"full_path"`
}

// ForkParentDTO identifies the upstream project of a fork.
type ForkParentDTO struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
	WebURL            string `json:"web_url"`
}

// CreateProjectRequest contains the fields for creating a task repository.
type CreateProjectRequest struct {
	Name                 string `json:"name"`
	Path                 string `json:"path,omitempty"`
	NamespaceID          int64  `json:"namespace_id,omitempty"`
	Description          string `json:"description,omitempty"`
	Visibility           string `json:"visibility"`
	InitializeWithReadme bool   `json:"initialize_with_readme"`
	DefaultBranch        string `json:"default_branch,omitempty"`
}

// ForkProjectRequest contains the fields for forking a repository
// into an intern's personal namespace.
type ForkProjectRequest struct {
	Namespace string `json:"namespace,omitempty"`
	Name      string `json:"name,omitempty"`
	Path      string `json:"path,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// USER DTOs
// ══════════════════════════════════════════════════════════════════════════════

// UserDTO represents a GitLab account.
type UserDTO struct {
	// ID is the numeric user identifier in GitLab
	ID int64 `json:"id"`

	// Username is the account login, also the personal namespace path
	Username string `json:"username"`

	// Name is the display name
	Name string `json:"name"`

	// Email is the primary email
	Email string `json:"email,omitempty"`

	// State is the account state: active, blocked, deactivated
	State string `json:"state"`

	// CreatedAt is when the account was created
	CreatedAt time.Time `json:"created_at"`
}

// IsBlocked reports whether the account is blocked.
func (u *UserDTO) IsBlocked() bool {
	return u.State == "blocked"
}

// CreateUserRequest contains the fields for creating an intern account.
type CreateUserRequest struct {
	Email            string `json:"email"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	Password         string `json:"password"`
	SkipConfirmation bool   `json:"skip_confirmation"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR DTOs
// ══════════════════════════════════════════════════════════════════════════════

// APIErrorDTO represents an error body returned by the GitLab API.
// GitLab returns either {"message": "..."} or {"error": "..."}.
type APIErrorDTO struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message,omitempty"`
	Reason     string `json:"error,omitempty"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Reason
	}
	return fmt.Sprintf("gitlab api: status %d: %s", e.StatusCode, msg)
}
