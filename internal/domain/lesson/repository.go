package lesson

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции для работы с занятиями.
type Repository interface {
	// Create создаёт новое занятие.
	Create(ctx context.Context, l *Lesson) error

	// GetByID возвращает занятие по ID.
	// Возвращает ErrLessonNotFound, если занятие не найдено.
	GetByID(ctx context.Context, id string) (*Lesson, error)

	// Update обновляет занятие.
	// Возвращает ErrLessonNotFound, если занятие не найдено.
	Update(ctx context.Context, l *Lesson) error

	// GetAll возвращает все занятия.
	GetAll(ctx context.Context) ([]*Lesson, error)

	// GetPublishedByInternship возвращает опубликованные занятия стажировки.
	GetPublishedByInternship(ctx context.Context, internshipID string) ([]*Lesson, error)
}

// TaskRepository определяет операции для работы с заданиями.
type TaskRepository interface {
	// Create создаёт новое задание.
	Create(ctx context.Context, t *Task) error

	// GetByID возвращает задание по ID.
	// Возвращает ErrTaskNotFound, если задание не найдено.
	GetByID(ctx context.Context, id string) (*Task, error)

	// GetByName возвращает задание по названию (совпадает с именем
	// проекта в GitLab). Возвращает ErrTaskNotFound, если не найдено.
	GetByName(ctx context.Context, name string) (*Task, error)

	// Update обновляет задание.
	// Возвращает ErrTaskNotFound, если задание не найдено.
	Update(ctx context.Context, t *Task) error

	// GetAll возвращает все задания.
	GetAll(ctx context.Context) ([]*Task, error)

	// GetPublished возвращает задания с датой публикации не позже указанной.
	GetPublished(ctx context.Context, asOf time.Time) ([]*Task, error)

	// GetUnpublishedByLesson возвращает задания занятия без даты публикации.
	// Порядок итерации стабилен (по времени создания).
	GetUnpublishedByLesson(ctx context.Context, lessonID string) ([]*Task, error)

	// GetByInternship возвращает все задания стажировки (через занятия).
	GetByInternship(ctx context.Context, internshipID string) ([]*Task, error)
}
