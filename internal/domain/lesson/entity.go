// Package lesson содержит доменную модель занятия и задания.
// Здесь живёт машина состояний публикации: занятие публикуется один раз
// и навсегда, задание получает дату публикации один раз и навсегда.
package lesson

import (
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON
// ══════════════════════════════════════════════════════════════════════════════

// Lesson - занятие внутри стажировки. Владеет заданиями (Task).
type Lesson struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - название занятия.
	Name string

	// Description - описание занятия.
	Description string

	// IsPublished - флаг публикации. Монотонный: false -> true, обратного
	// перехода нет.
	IsPublished bool

	// InternshipID - стажировка, к которой относится занятие.
	InternshipID string

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewLesson создаёт новое неопубликованное занятие.
func NewLesson(id, name, description, internshipID string, now time.Time) (*Lesson, error) {
	if name == "" {
		return nil, shared.NewDomainError("lesson", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	if internshipID == "" {
		return nil, shared.NewDomainError("lesson", "Create", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return &Lesson{
		ID:           id,
		Name:         name,
		Description:  description,
		IsPublished:  false,
		InternshipID: internshipID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Publish переводит занятие в опубликованное состояние.
// Возвращает ErrLessonAlreadyPublished при повторной публикации:
// переход односторонний.
func (l *Lesson) Publish(now time.Time) error {
	if l.IsPublished {
		return shared.ErrLessonAlreadyPublished
	}
	l.IsPublished = true
	l.UpdatedAt = now
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK
// ══════════════════════════════════════════════════════════════════════════════

// Task - задание внутри занятия. При создании получает репозиторий
// в GitLab (RepositoryURL и RepositoryID выставляются один раз).
// PublishDate - маркер публикации: nil означает "не опубликовано",
// непустое значение никогда не очищается.
type Task struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// Name - название задания. По нему же резолвится задание при
	// обработке пуша (имя проекта в GitLab совпадает с именем задания).
	Name string

	// Description - условие задания.
	Description string

	// LessonID - занятие, к которому относится задание.
	LessonID string

	// RepositoryURL - адрес шаблонного репозитория в GitLab.
	RepositoryURL string

	// RepositoryID - идентификатор проекта в GitLab.
	RepositoryID int64

	// PublishDate - дата публикации; nil, пока задание не опубликовано.
	PublishDate *time.Time

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewTask создаёт новое неопубликованное задание с уже привязанным
// репозиторием. Репозиторий создаётся до конструирования задания:
// сначала резолвятся все внешние сущности, затем строится значение.
func NewTask(id, name, description, lessonID, repositoryURL string, repositoryID int64, now time.Time) (*Task, error) {
	if name == "" {
		return nil, shared.NewDomainError("task", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	if lessonID == "" {
		return nil, shared.NewDomainError("task", "Create", shared.ErrEmptyValue, "lesson id cannot be empty")
	}
	if repositoryURL == "" || repositoryID <= 0 {
		return nil, shared.NewDomainError("task", "Create", shared.ErrInvalidInput, "task requires a provisioned repository")
	}
	return &Task{
		ID:            id,
		Name:          name,
		Description:   description,
		LessonID:      lessonID,
		RepositoryURL: repositoryURL,
		RepositoryID:  repositoryID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsPublished возвращает true, если дата публикации выставлена и не лежит
// в будущем. Проверка нарочно не сравнивает с "вчера": любое непустое,
// не-будущее значение считается состоявшейся публикацией, чтобы рассинхрон
// часов не давал ложного "ещё не опубликовано".
func (t *Task) IsPublished(now time.Time) bool {
	if t.PublishDate == nil {
		return false
	}
	return !t.PublishDate.After(now)
}

// Publish выставляет дату публикации. Terminal-переход:
//   - ErrLessonNotPublished, если родительское занятие не опубликовано;
//   - ErrTaskAlreadyPublished, если дата уже выставлена.
func (t *Task) Publish(lessonPublished bool, now time.Time) error {
	if !lessonPublished {
		return shared.ErrLessonNotPublished
	}
	if t.IsPublished(now) {
		return shared.ErrTaskAlreadyPublished
	}
	publishDate := now
	t.PublishDate = &publishDate
	t.UpdatedAt = now
	return nil
}
