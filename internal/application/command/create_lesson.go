package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE LESSON COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// CreateLessonCommand contains the data needed to create a lesson.
type CreateLessonCommand struct {
	// Name is the lesson name.
	Name string

	// Description is the lesson description.
	Description string

	// InternshipID is the internship the lesson belongs to.
	InternshipID string
}

// Validate validates the command.
func (c CreateLessonCommand) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("lesson", "Create", shared.ErrEmptyValue, "name cannot be empty")
	}
	if c.InternshipID == "" {
		return shared.NewDomainError("lesson", "Create", shared.ErrEmptyValue, "internship id cannot be empty")
	}
	return nil
}

// CreateLessonResult contains the result of lesson creation.
type CreateLessonResult struct {
	// LessonID is the ID of the created lesson.
	LessonID string

	// CreatedAt is when the lesson was created.
	CreatedAt time.Time
}

// CreateLessonHandler handles the CreateLessonCommand.
type CreateLessonHandler struct {
	lessonRepo lesson.Repository
}

// NewCreateLessonHandler creates a new CreateLessonHandler.
func NewCreateLessonHandler(lessonRepo lesson.Repository) *CreateLessonHandler {
	return &CreateLessonHandler{
		lessonRepo: lessonRepo,
	}
}

// Handle executes the create lesson command.
func (h *CreateLessonHandler) Handle(ctx context.Context, cmd CreateLessonCommand) (*CreateLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := timeutil.Now()
	l, err := lesson.NewLesson(uuid.NewString(), cmd.Name, cmd.Description, cmd.InternshipID, now)
	if err != nil {
		return nil, err
	}

	if err := h.lessonRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create_lesson: failed to save lesson: %w", err)
	}

	return &CreateLessonResult{
		LessonID:  l.ID,
		CreatedAt: now,
	}, nil
}
