// Package internship содержит доменную модель стажировки.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
package internship

import (
	"strings"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// Status определяет текущий статус стажировки.
type Status string

const (
	// StatusOpen - стажировка открыта, идёт набор и обучение.
	StatusOpen Status = "OPEN"
	// StatusClosed - стажировка закрыта.
	StatusClosed Status = "CLOSED"
)

// IsValid проверяет, что статус корректен.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusClosed:
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
// Возвращает ErrInvalidStatus для неизвестных значений.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.ErrInvalidStatus
	}
	return s, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: INTERNSHIP
// ══════════════════════════════════════════════════════════════════════════════

// DateRange описывает временные рамки стажировки: окно регистрации
// и период обучения.
type DateRange struct {
	// RegistrationStart - начало приёма заявок.
	RegistrationStart time.Time

	// RegistrationEnd - окончание приёма заявок.
	RegistrationEnd time.Time

	// Start - начало обучения.
	Start time.Time

	// End - окончание обучения.
	End time.Time
}

// Validate проверяет, что даты идут в допустимом порядке:
// регистрация не может закончиться раньше, чем началась, а обучение
// не может закончиться раньше своего старта.
func (d DateRange) Validate() error {
	if d.RegistrationStart.IsZero() || d.RegistrationEnd.IsZero() || d.Start.IsZero() || d.End.IsZero() {
		return shared.ErrInvalidDateRange
	}
	if d.RegistrationEnd.Before(d.RegistrationStart) {
		return shared.ErrInvalidDateRange
	}
	if d.Start.Before(d.RegistrationStart) {
		return shared.ErrInvalidDateRange
	}
	if d.End.Before(d.Start) {
		return shared.ErrInvalidDateRange
	}
	return nil
}

// Internship - сущность стажировки. Владеет занятиями (Lesson) и
// зачисленными пользователями (User) по ссылке: внешние ключи хранятся
// на стороне занятий и пользователей.
type Internship struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// Name - название стажировки.
	Name string

	// Description - описание программы.
	Description string

	// Dates - окно регистрации и период обучения.
	Dates DateRange

	// Status - текущий статус (OPEN/CLOSED).
	Status Status

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего изменения.
	UpdatedAt time.Time
}

// NewInternship создаёт новую стажировку со статусом OPEN.
// Возвращает ошибку, если диапазон дат некорректен.
func NewInternship(id, name, description string, dates DateRange, now time.Time) (*Internship, error) {
	if name == "" {
		return nil, shared.NewDomainError("internship", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	if err := dates.Validate(); err != nil {
		return nil, err
	}
	return &Internship{
		ID:          id,
		Name:        name,
		Description: description,
		Dates:       dates,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsOpen возвращает true, если стажировка открыта.
func (i *Internship) IsOpen() bool {
	return i.Status == StatusOpen
}

// ChangeStatus переводит стажировку в новый статус.
func (i *Internship) ChangeStatus(status Status, now time.Time) error {
	if !status.IsValid() {
		return shared.ErrInvalidStatus
	}
	i.Status = status
	i.UpdatedAt = now
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationStatus определяет статус заявки на стажировку.
type ApplicationStatus string

const (
	// ApplicationNew - заявка подана и ждёт рассмотрения.
	ApplicationNew ApplicationStatus = "NEW"
	// ApplicationApproved - заявка одобрена.
	ApplicationApproved ApplicationStatus = "APPROVED"
	// ApplicationRejected - заявка отклонена.
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// IsValid проверяет, что статус заявки корректен.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationNew, ApplicationApproved, ApplicationRejected:
		return true
	default:
		return false
	}
}

// ParseApplicationStatus разбирает статус заявки без учёта регистра.
func ParseApplicationStatus(raw string) (ApplicationStatus, error) {
	s := ApplicationStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", shared.NewDomainError("internship", "ParseApplicationStatus", shared.ErrInvalidInput, "unknown application status")
	}
	return s, nil
}

// Application - заявка на участие в стажировке до зачисления.
// Естественный ключ - пара (PhoneNumber, InternshipID): повторная активная
// заявка от того же номера на ту же стажировку не допускается.
type Application struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// Name - имя заявителя.
	Name string

	// PhoneNumber - контактный телефон заявителя.
	PhoneNumber string

	// Email - адрес электронной почты заявителя.
	Email string

	// InternshipID - стажировка, на которую подана заявка.
	InternshipID string

	// Status - текущий статус заявки.
	Status ApplicationStatus

	// CreatedAt - время подачи заявки.
	CreatedAt time.Time
}

// IsStale возвращает true, если заявка была подана до открытия текущего
// окна регистрации и поэтому может быть переподана заново.
func (a *Application) IsStale(registrationStart time.Time) bool {
	return a.CreatedAt.Before(registrationStart)
}
