package solution

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Уникальный индекс по repository_url в хранилище - единственный механизм
// защиты от гонки двух доставок вебхука на один и тот же новый форк.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с решениями.
type Repository interface {
	// Create создаёт новое решение.
	// Возвращает ErrSolutionExists при нарушении уникальности repository_url:
	// вызывающая сторона трактует это как "кто-то успел раньше" и повторяет
	// операцию как обновление.
	Create(ctx context.Context, s *Solution) error

	// GetByID возвращает решение по ID.
	// Возвращает ErrSolutionNotFound, если решение не найдено.
	GetByID(ctx context.Context, id string) (*Solution, error)

	// GetByRepositoryURL возвращает решение по адресу форка (точное
	// совпадение). Возвращает ErrSolutionNotFound, если решения нет.
	GetByRepositoryURL(ctx context.Context, repositoryURL string) (*Solution, error)

	// Update обновляет решение.
	// Возвращает ErrSolutionNotFound, если решение не найдено.
	Update(ctx context.Context, s *Solution) error

	// GetAll возвращает все решения.
	GetAll(ctx context.Context) ([]*Solution, error)

	// GetByStatus возвращает неархивные решения с указанным статусом.
	GetByStatus(ctx context.Context, status Status) ([]*Solution, error)

	// GetByTask возвращает неархивные решения задания.
	GetByTask(ctx context.Context, taskID string) ([]*Solution, error)

	// GetByUser возвращает все решения пользователя, включая архивные.
	GetByUser(ctx context.Context, userID string) ([]*Solution, error)

	// GetByUserAndTasks возвращает решения пользователя по списку заданий
	// (для построения отчёта).
	GetByUserAndTasks(ctx context.Context, userID string, taskIDs []string) ([]*Solution, error)

	// ArchiveByUser помечает все решения пользователя архивными одним
	// запросом в рамках текущей транзакции.
	ArchiveByUser(ctx context.Context, userID string) error
}
