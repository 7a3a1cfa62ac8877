package internship

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы со стажировками.
type Repository interface {
	// Create создаёт новую стажировку.
	Create(ctx context.Context, i *Internship) error

	// GetByID возвращает стажировку по ID.
	// Возвращает ErrInternshipNotFound, если стажировка не найдена.
	GetByID(ctx context.Context, id string) (*Internship, error)

	// Update обновляет данные стажировки.
	// Возвращает ErrInternshipNotFound, если стажировка не найдена.
	Update(ctx context.Context, i *Internship) error

	// GetAll возвращает все стажировки.
	GetAll(ctx context.Context) ([]*Internship, error)

	// GetByStatus возвращает стажировки с указанным статусом.
	GetByStatus(ctx context.Context, status Status) ([]*Internship, error)
}

// ApplicationRepository определяет операции для работы с заявками.
type ApplicationRepository interface {
	// Create создаёт новую заявку.
	// Возвращает ErrApplicationExists при нарушении уникальности
	// пары (phone_number, internship_id).
	Create(ctx context.Context, a *Application) error

	// GetByID возвращает заявку по ID.
	// Возвращает ErrApplicationNotFound, если заявка не найдена.
	GetByID(ctx context.Context, id string) (*Application, error)

	// GetByPhoneAndInternship возвращает заявку по естественному ключу.
	// Возвращает ErrApplicationNotFound, если заявки нет.
	GetByPhoneAndInternship(ctx context.Context, phoneNumber, internshipID string) (*Application, error)

	// Update обновляет заявку (в том числе переподача по тому же ключу).
	Update(ctx context.Context, a *Application) error

	// GetAll возвращает все заявки.
	GetAll(ctx context.Context) ([]*Application, error)

	// GetByStatus возвращает заявки с указанным статусом.
	GetByStatus(ctx context.Context, status ApplicationStatus) ([]*Application, error)
}
