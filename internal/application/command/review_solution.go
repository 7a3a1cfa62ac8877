package command

import (
	"context"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW SOLUTION COMMAND
// Ручная проверка решения администратором. Переходы статусов не ограничены:
// проверка обратима, следующий пуш стажёра всё равно вернёт SENT.
// ══════════════════════════════════════════════════════════════════════════════

// ReviewSolutionCommand sets the review verdict on a solution.
type ReviewSolutionCommand struct {
	// SolutionID is the solution being reviewed.
	SolutionID string

	// Status is the verdict ("APPROVED"/"REJECTED"/"SENT", case-insensitive).
	Status string

	// Comment is the reviewer's comment; empty keeps the previous one.
	Comment string
}

// Validate validates the command.
func (c ReviewSolutionCommand) Validate() error {
	if c.SolutionID == "" {
		return shared.NewDomainError("solution", "Review", shared.ErrEmptyValue, "solution id cannot be empty")
	}
	return nil
}

// ReviewSolutionResult contains the result of a review.
type ReviewSolutionResult struct {
	// SolutionID is the reviewed solution.
	SolutionID string

	// Status is the recorded verdict.
	Status string

	// CheckedTime is when the review was recorded.
	CheckedTime time.Time
}

// ReviewSolutionHandler handles the ReviewSolutionCommand.
type ReviewSolutionHandler struct {
	solutionRepo solution.Repository
}

// NewReviewSolutionHandler creates a new ReviewSolutionHandler.
func NewReviewSolutionHandler(solutionRepo solution.Repository) *ReviewSolutionHandler {
	return &ReviewSolutionHandler{
		solutionRepo: solutionRepo,
	}
}

// Handle executes the review solution command.
func (h *ReviewSolutionHandler) Handle(ctx context.Context, cmd ReviewSolutionCommand) (*ReviewSolutionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	status, err := solution.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	s, err := h.solutionRepo.GetByID(ctx, cmd.SolutionID)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	if err := s.Review(status, cmd.Comment, now); err != nil {
		return nil, err
	}

	if err := h.solutionRepo.Update(ctx, s); err != nil {
		return nil, fmt.Errorf("review_solution: failed to save solution: %w", err)
	}

	return &ReviewSolutionResult{
		SolutionID:  s.ID,
		Status:      s.Status.String(),
		CheckedTime: now,
	}, nil
}
