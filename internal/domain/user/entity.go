// Package user содержит доменную модель пользователя стажировки.
package user

import (
	"strings"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROLE
// ══════════════════════════════════════════════════════════════════════════════

// Role определяет роль пользователя в системе.
type Role string

const (
	// RoleAdmin - администратор программы.
	RoleAdmin Role = "ADMIN"
	// RoleUser - зачисленный стажёр. Только пользователи с этой ролью
	// получают форки при публикации заданий.
	RoleUser Role = "USER"
	// RoleArchived - отчисленный пользователь. Его решения архивированы,
	// аккаунт в GitLab заблокирован.
	RoleArchived Role = "ARCHIVED"
)

// IsValid проверяет, что роль корректна.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleArchived:
		return true
	default:
		return false
	}
}

// ParseRole разбирает роль без учёта регистра.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if !r.IsValid() {
		return "", shared.ErrInvalidRole
	}
	return r, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: USER
// ══════════════════════════════════════════════════════════════════════════════

// User - пользователь системы: администратор или стажёр.
// Username совпадает с аккаунтом в GitLab и служит целевым namespace
// при форке репозиториев заданий.
type User struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Username - уникальное имя пользователя (и namespace в GitLab).
	Username string

	// Name - отображаемое имя.
	Name string

	// Email - уникальный адрес электронной почты.
	Email string

	// PasswordHash - bcrypt-хеш пароля.
	PasswordHash string

	// Role - роль пользователя.
	Role Role

	// InternshipID - стажировка, в которую зачислен пользователь;
	// пустая строка для администраторов.
	InternshipID string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewUser создаёт нового пользователя.
func NewUser(id, username, name, email, passwordHash string, role Role, internshipID string, now time.Time) (*User, error) {
	if username == "" {
		return nil, shared.NewDomainError("user", "Create", shared.ErrEmptyValue, "username cannot be empty")
	}
	if email == "" {
		return nil, shared.NewDomainError("user", "Create", shared.ErrEmptyValue, "email cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.ErrInvalidRole
	}
	return &User{
		ID:           id,
		Username:     username,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		InternshipID: internshipID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsActiveIntern возвращает true, если пользователь - действующий стажёр.
func (u *User) IsActiveIntern() bool {
	return u.Role == RoleUser
}

// Archive переводит пользователя в роль ARCHIVED.
// Повторная архивация - no-op: операция идемпотентна.
func (u *User) Archive(now time.Time) {
	u.Role = RoleArchived
	u.UpdatedAt = now
}
