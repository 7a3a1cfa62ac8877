package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT APPLICATION COMMAND
// Приём заявки с дедупликацией по паре (телефон, стажировка). Заявка из
// прошлого набора считается устаревшей и переподаётся поверх старой записи.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitApplicationCommand contains the data of an internship application.
type SubmitApplicationCommand struct {
	// Name is the applicant's name.
	Name string

	// PhoneNumber is the applicant's contact phone.
	PhoneNumber string

	// Email is the applicant's email.
	Email string

	// InternshipID is the internship being applied to.
	InternshipID string
}

// Validate validates the command.
func (c SubmitApplicationCommand) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("internship", "Apply", shared.ErrEmptyValue, "name cannot be empty")
	}
	if c.PhoneNumber == "" {
		return shared.NewDomainError("internship", "Apply", shared.ErrEmptyValue, "phone number cannot be empty")
	}
	if c.Email == "" {
		return shared.NewDomainError("internship", "Apply", shared.ErrEmptyValue, "email cannot be empty")
	}
	if c.InternshipID == "" {
		return shared.NewDomainError("internship", "Apply", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return nil
}

// SubmitApplicationResult contains the result of application submission.
type SubmitApplicationResult struct {
	// ApplicationID is the ID of the stored application.
	ApplicationID string

	// Resubmitted is true when a stale application was replaced.
	Resubmitted bool

	// SubmittedAt is when the application was recorded.
	SubmittedAt time.Time
}

// SubmitApplicationHandler handles the SubmitApplicationCommand.
type SubmitApplicationHandler struct {
	internshipRepo  internship.Repository
	applicationRepo internship.ApplicationRepository
}

// NewSubmitApplicationHandler creates a new SubmitApplicationHandler.
func NewSubmitApplicationHandler(
	internshipRepo internship.Repository,
	applicationRepo internship.ApplicationRepository,
) *SubmitApplicationHandler {
	return &SubmitApplicationHandler{
		internshipRepo:  internshipRepo,
		applicationRepo: applicationRepo,
	}
}

// Handle executes the submit application command.
func (h *SubmitApplicationHandler) Handle(ctx context.Context, cmd SubmitApplicationCommand) (*SubmitApplicationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	i, err := h.internshipRepo.GetByID(ctx, cmd.InternshipID)
	if err != nil {
		return nil, err
	}
	if !i.IsOpen() {
		return nil, shared.ErrInternshipNotOpen
	}

	now := timeutil.Now()

	existing, err := h.applicationRepo.GetByPhoneAndInternship(ctx, cmd.PhoneNumber, cmd.InternshipID)
	switch {
	case err == nil:
		if !existing.IsStale(i.Dates.RegistrationStart) {
			return nil, shared.ErrApplicationExists
		}
		// Заявка из прошлого набора: переподача поверх старой записи.
		existing.Name = cmd.Name
		existing.Email = cmd.Email
		existing.Status = internship.ApplicationNew
		existing.CreatedAt = now
		if err := h.applicationRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("submit_application: failed to resubmit application: %w", err)
		}
		return &SubmitApplicationResult{
			ApplicationID: existing.ID,
			Resubmitted:   true,
			SubmittedAt:   now,
		}, nil

	case errors.Is(err, shared.ErrApplicationNotFound):
		// Первая заявка, идём дальше.

	default:
		return nil, fmt.Errorf("submit_application: failed to check existing application: %w", err)
	}

	a := &internship.Application{
		ID:           uuid.NewString(),
		Name:         cmd.Name,
		PhoneNumber:  cmd.PhoneNumber,
		Email:        cmd.Email,
		InternshipID: cmd.InternshipID,
		Status:       internship.ApplicationNew,
		CreatedAt:    now,
	}

	if err := h.applicationRepo.Create(ctx, a); err != nil {
		// Гонка двух одновременных заявок: уникальный индекс решает.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrApplicationExists
		}
		return nil, fmt.Errorf("submit_application: failed to save application: %w", err)
	}

	return &SubmitApplicationResult{
		ApplicationID: a.ID,
		SubmittedAt:   now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW APPLICATION COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ReviewApplicationCommand sets the status of an application.
type ReviewApplicationCommand struct {
	// ApplicationID is the application to review.
	ApplicationID string

	// Status is the new status ("APPROVED"/"REJECTED", case-insensitive).
	Status string
}

// Validate validates the command.
func (c ReviewApplicationCommand) Validate() error {
	if c.ApplicationID == "" {
		return shared.NewDomainError("internship", "ReviewApplication", shared.ErrEmptyValue, "application id cannot be empty")
	}
	return nil
}

// ReviewApplicationHandler handles the ReviewApplicationCommand.
type ReviewApplicationHandler struct {
	applicationRepo internship.ApplicationRepository
}

// NewReviewApplicationHandler creates a new ReviewApplicationHandler.
func NewReviewApplicationHandler(applicationRepo internship.ApplicationRepository) *ReviewApplicationHandler {
	return &ReviewApplicationHandler{
		applicationRepo: applicationRepo,
	}
}

// Handle executes the review application command.
func (h *ReviewApplicationHandler) Handle(ctx context.Context, cmd ReviewApplicationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	status, err := internship.ParseApplicationStatus(cmd.Status)
	if err != nil {
		return err
	}

	a, err := h.applicationRepo.GetByID(ctx, cmd.ApplicationID)
	if err != nil {
		return err
	}

	a.Status = status
	if err := h.applicationRepo.Update(ctx, a); err != nil {
		return fmt.Errorf("review_application: failed to save application: %w", err)
	}

	return nil
}
