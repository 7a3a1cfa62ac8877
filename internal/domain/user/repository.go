package user

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence/postgres.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с пользователями.
type Repository interface {
	// Create создаёт нового пользователя.
	// Возвращает ErrUserExists при нарушении уникальности username или email.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по ID.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByUsername возвращает пользователя по имени.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail возвращает пользователя по email.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update обновляет пользователя.
	// Возвращает ErrUserNotFound, если пользователь не найден.
	Update(ctx context.Context, u *User) error

	// GetAll возвращает всех пользователей.
	GetAll(ctx context.Context) ([]*User, error)

	// GetByInternshipAndRole возвращает пользователей стажировки
	// с указанной ролью. Это аудитория форк-оркестратора при роли USER.
	GetByInternshipAndRole(ctx context.Context, internshipID string, role Role) ([]*User, error)
}
