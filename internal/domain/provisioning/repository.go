package provisioning

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACE
// Реализация находится в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с отложенными форками.
type Repository interface {
	// Create сохраняет новую запись об отложенном форке. Если запись для
	// пары (задание, стажёр) уже существует, возвращает ErrAlreadyExists.
	Create(ctx context.Context, p *PendingFork) error

	// Update обновляет счётчик попыток и текст ошибки.
	Update(ctx context.Context, p *PendingFork) error

	// Delete удаляет запись после успешного форка.
	Delete(ctx context.Context, id string) error

	// GetPending возвращает записи с неисчерпанным лимитом попыток,
	// не более limit за раз, в порядке создания.
	GetPending(ctx context.Context, limit int) ([]*PendingFork, error)

	// GetByTaskAndUser возвращает запись для пары (задание, стажёр).
	GetByTaskAndUser(ctx context.Context, taskID, userID string) (*PendingFork, error)
}
