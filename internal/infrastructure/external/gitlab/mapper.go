// Package gitlab implements the client for the self-hosted GitLab instance.
package gitlab

import (
	"errors"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to internal value transformations
// ══════════════════════════════════════════════════════════════════════════════

// ErrNilDTO is returned when a nil DTO is passed to the mapper.
var ErrNilDTO = errors.New("nil dto")

// Repository is the internal view of a GitLab project.
// Only the fields the rest of the system cares about survive the mapping,
// so GitLab API changes stay contained in this package.
type Repository struct {
	ID            int64
	Name          string
	FullPath      string
	WebURL        string
	CloneURL      string
	DefaultBranch string
	IsFork        bool
	UpstreamID    int64
}

// Account is the internal view of a GitLab user account.
type Account struct {
	ID       int64
	Username string
	Name     string
	Email    string
	Blocked  bool
}

// Mapper handles transformation between GitLab API DTOs and internal values.
// This follows the Anti-Corruption Layer pattern from DDD.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// RepositoryFromDTO converts a ProjectDTO to a Repository.
func (m *Mapper) RepositoryFromDTO(dto *ProjectDTO) (*Repository, error) {
	if dto == nil {
		return nil, ErrNilDTO
	}

	repo := &Repository{
		ID:            dto.ID,
		Name:          dto.Name,
		FullPath:      dto.PathWithNamespace,
		WebURL:        dto.WebURL,
		CloneURL:      dto.HTTPURLToRepo,
		DefaultBranch: dto.DefaultBranch,
		IsFork:        dto.IsFork(),
	}

	if dto.ForkedFromProject != nil {
		repo.UpstreamID = dto.ForkedFromProject.ID
	}

	return repo, nil
}

// AccountFromDTO converts a UserDTO to an Account.
func (m *Mapper) AccountFromDTO(dto *UserDTO) (*Account, error) {
	if dto == nil {
		return nil, ErrNilDTO
	}

	return &Account{
		ID:       dto.ID,
		Username: dto.Username,
		Name:     dto.Name,
		Email:    dto.Email,
		Blocked:  dto.IsBlocked(),
	}, nil
}
