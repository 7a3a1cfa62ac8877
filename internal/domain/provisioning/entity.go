// Package provisioning содержит доменную модель отложенного провиженинга
// форков. Когда при публикации задания форк для отдельного стажёра не
// удался, запись сохраняется здесь и периодически повторяется планировщиком.
package provisioning

import (
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// MaxAttempts - максимальное число повторов форка, после которого запись
// помечается как исчерпанная и требует ручного вмешательства.
const MaxAttempts = 10

// PendingFork - отложенный форк репозитория задания для конкретного стажёра.
type PendingFork struct {
	// ID - уникальный идентификатор записи.
	ID string

	// TaskID - задание, репозиторий которого нужно форкнуть.
	TaskID string

	// UserID - стажёр, для которого создаётся форк.
	UserID string

	// Username - неймспейс GitLab, в который выполняется форк.
	Username string

	// RepositoryID - идентификатор исходного репозитория в GitLab.
	RepositoryID int64

	// Attempts - сколько попыток уже сделано.
	Attempts int

	// LastError - текст последней ошибки провиженинга.
	LastError string

	// CreatedAt - время первой неудачной попытки.
	CreatedAt time.Time

	// UpdatedAt - время последней попытки.
	UpdatedAt time.Time
}

// NewPendingFork создаёт запись об отложенном форке.
func NewPendingFork(taskID, userID, username string, repositoryID int64, cause error) (*PendingFork, error) {
	if taskID == "" || userID == "" || username == "" {
		return nil, shared.ErrInvalidInput
	}
	if repositoryID <= 0 {
		return nil, shared.ErrInvalidInput
	}

	now := time.Now().UTC()
	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}

	return &PendingFork{
		ID:           uuid.NewString(),
		TaskID:       taskID,
		UserID:       userID,
		Username:     username,
		RepositoryID: repositoryID,
		Attempts:     1,
		LastError:    lastError,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RecordFailure фиксирует очередную неудачную попытку.
func (p *PendingFork) RecordFailure(cause error) {
	p.Attempts++
	if cause != nil {
		p.LastError = cause.Error()
	}
	p.UpdatedAt = time.Now().UTC()
}

// Exhausted сообщает, исчерпан ли лимит автоматических повторов.
func (p *PendingFork) Exhausted() bool {
	return p.Attempts >= MaxAttempts
}
