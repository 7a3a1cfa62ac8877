// Package solution содержит доменную модель решения задания.
// Решение - запись о последнем пуше студента в его форк репозитория
// задания. Естественный ключ - уникальный URL форка.
package solution

import (
	"strings"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет статус проверки решения.
type Status string

const (
	// StatusSent - решение отправлено и ждёт проверки. Каждый новый пуш
	// сбрасывает статус обратно в SENT независимо от результата проверки.
	StatusSent Status = "SENT"
	// StatusApproved - решение принято.
	StatusApproved Status = "APPROVED"
	// StatusRejected - решение отклонено, требуется доработка.
	StatusRejected Status = "REJECTED"
	// StatusNoSolution - виртуальный статус "решения нет". Используется
	// только в отчётах, в хранилище никогда не попадает.
	StatusNoSolution Status = "NO_SOLUTION"
)

// IsValid проверяет, что статус можно сохранить в хранилище.
// NO_SOLUTION намеренно не проходит: это sentinel для отчётов.
func (s Status) IsValid() bool {
	switch s {
	case StatusSent, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s Status) String() string {
	return string(s)
}

// ParseStatus разбирает статус из произвольной строки без учёта регистра.
// Возвращает ErrInvalidSolutionStatus для неизвестных и виртуальных значений.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.ErrInvalidSolutionStatus
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SOLUTION
// ══════════════════════════════════════════════════════════════════════════════

// Solution - запись о решении задания. Создаётся первым пушем в форк,
// обновляется каждым последующим, архивируется при отчислении студента.
// Никогда не удаляется физически.
type Solution struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// RepositoryURL - адрес форка студента. Уникален: на один форк
	// существует не более одного решения.
	RepositoryURL string

	// LastCommitTime - время последнего коммита в отчётной таймзоне сервиса.
	LastCommitTime time.Time

	// LastCommitURL - ссылка на последний коммит.
	LastCommitURL string

	// Status - статус проверки.
	Status Status

	// Comment - комментарий проверяющего.
	Comment string

	// CheckedTime - время последней проверки; nil, пока решение не проверялось.
	CheckedTime *time.Time

	// IsArchived - признак архивации (мягкое удаление при отчислении).
	IsArchived bool

	// UserID - студент, которому принадлежит форк.
	UserID string

	// TaskID - задание, к которому относится решение.
	TaskID string

	// CreatedAt - время первого пуша.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewSolution создаёт решение по первому пушу. Пользователь и задание
// должны быть уже отрезолвлены вызывающей стороной.
func NewSolution(id, repositoryURL, lastCommitURL, userID, taskID string, lastCommitTime, now time.Time) (*Solution, error) {
	if repositoryURL == "" {
		return nil, shared.NewDomainError("solution", "Create", shared.ErrEmptyValue, "repository url cannot be empty")
	}
	if userID == "" || taskID == "" {
		return nil, shared.ErrUntracedPush
	}
	return &Solution{
		ID:             id,
		RepositoryURL:  repositoryURL,
		LastCommitTime: lastCommitTime,
		LastCommitURL:  lastCommitURL,
		Status:         StatusSent,
		IsArchived:     false,
		UserID:         userID,
		TaskID:         taskID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// RecordPush обновляет решение по новому пушу: метаданные коммита
// перезаписываются, статус сбрасывается в SENT. Архивность, время проверки
// и связи с пользователем и заданием не трогаются.
func (s *Solution) RecordPush(lastCommitTime time.Time, lastCommitURL string, now time.Time) {
	s.LastCommitTime = lastCommitTime
	s.LastCommitURL = lastCommitURL
	s.Status = StatusSent
	s.UpdatedAt = now
}

// Review выставляет новый статус проверки и фиксирует время проверки.
// Переходы не ограничены: проверка ручная и обратимая.
func (s *Solution) Review(status Status, comment string, now time.Time) error {
	if !status.IsValid() {
		return shared.ErrInvalidSolutionStatus
	}
	s.Status = status
	if comment != "" {
		s.Comment = comment
	}
	checked := now
	s.CheckedTime = &checked
	s.UpdatedAt = now
	return nil
}

// Archive помечает решение архивным.
func (s *Solution) Archive(now time.Time) {
	s.IsArchived = true
	s.UpdatedAt = now
}
