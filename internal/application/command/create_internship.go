package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE INTERNSHIP COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateInternshipCommand contains the data needed to create an internship.
type CreateInternshipCommand struct {
	// Name is the internship name.
	Name string

	// Description is the program description.
	Description string

	// RegistrationStart opens the application window.
	RegistrationStart time.Time

	// RegistrationEnd closes the application window.
	RegistrationEnd time.Time

	// Start is the first day of training.
	Start time.Time

	// End is the last day of training.
	End time.Time
}

// Validate validates the command.
func (c CreateInternshipCommand) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("internship", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	return nil
}

// CreateInternshipResult contains the result of internship creation.
type CreateInternshipResult struct {
	// InternshipID is the ID of the created internship.
	InternshipID string

	// Status is the initial status.
	Status string

	// CreatedAt is when the internship was created.
	CreatedAt time.Time
}

// CreateInternshipHandler handles the CreateInternshipCommand.
type CreateInternshipHandler struct {
	internshipRepo internship.Repository
}

// NewCreateInternshipHandler creates a new CreateInternshipHandler.
func NewCreateInternshipHandler(internshipRepo internship.Repository) *CreateInternshipHandler {
	return &CreateInternshipHandler{
		internshipRepo: internshipRepo,
	}
}

// Handle executes the create internship command.
func (h *CreateInternshipHandler) Handle(ctx context.Context, cmd CreateInternshipCommand) (*CreateInternshipResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := timeutil.Now()
	dates := internship.DateRange{
		RegistrationStart: cmd.RegistrationStart,
		RegistrationEnd:   cmd.RegistrationEnd,
		Start:             cmd.Start,
		End:               cmd.End,
	}

	i, err := internship.NewInternship(uuid.NewString(), cmd.Name, cmd.Description, dates, now)
	if err != nil {
		return nil, err
	}

	if err := h.internshipRepo.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("create_internship: failed to save internship: %w", err)
	}

	return &CreateInternshipResult{
		InternshipID: i.ID,
		Status:       i.Status.String(),
		CreatedAt:    i.CreatedAt,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE INTERNSHIP STATUS COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ChangeInternshipStatusCommand changes the status of an internship.
type ChangeInternshipStatusCommand struct {
	// InternshipID is the internship to update.
	InternshipID string

	// Status is the target status ("OPEN"/"CLOSED", case-insensitive).
	Status string
}

// Validate validates the command.
func (c ChangeInternshipStatusCommand) Validate() error {
	if c.InternshipID == "" {
		return shared.NewDomainError("internship", "ChangeStatus", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return nil
}

// ChangeInternshipStatusHandler handles the ChangeInternshipStatusCommand.
type ChangeInternshipStatusHandler struct {
	internshipRepo internship.Repository
}

// NewChangeInternshipStatusHandler creates a new ChangeInternshipStatusHandler.
func NewChangeInternshipStatusHandler(internshipRepo internship.Repository) *ChangeInternshipStatusHandler {
	return &ChangeInternshipStatusHandler{
		internshipRepo: internshipRepo,
	}
}

// Handle executes the change status command.
func (h *ChangeInternshipStatusHandler) Handle(ctx context.Context, cmd ChangeInternshipStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	status, err := internship.ParseStatus(cmd.Status)
	if err != nil {
		return err
	}

	i, err := h.internshipRepo.GetByID(ctx, cmd.InternshipID)
	if err != nil {
		return err
	}

	if err := i.ChangeStatus(status, timeutil.Now()); err != nil {
		return err
	}

	if err := h.internshipRepo.Update(ctx, i); err != nil {
		return fmt.Errorf("change_internship_status: failed to save internship: %w", err)
	}

	return nil
}
