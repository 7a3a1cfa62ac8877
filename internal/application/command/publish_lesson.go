package command

import (
	"context"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH LESSON COMMAND
// Публикация занятия - односторонний переход. Задания занятия при этом
// не публикуются: у них своя, отдельная публикация.
// ══════════════════════════════════════════════════════════════════════════════

// PublishLessonCommand publishes a lesson.
type PublishLessonCommand struct {
	// LessonID is the lesson to publish.
	LessonID string
}

// Validate validates the command.
func (c PublishLessonCommand) Validate() error {
	if c.LessonID == "" {
		return shared.NewDomainError("lesson", "Publish", shared.ErrEmptyValue, "lesson id cannot be empty")
	}
	return nil
}

// PublishLessonResult contains the result of lesson publication.
type PublishLessonResult struct {
	// LessonID is the published lesson.
	LessonID string

	// PublishedAt is when the lesson was published.
	PublishedAt time.Time
}

// PublishLessonHandler handles the PublishLessonCommand.
type PublishLessonHandler struct {
	lessonRepo lesson.Repository
}

// NewPublishLessonHandler creates a new PublishLessonHandler.
func NewPublishLessonHandler(lessonRepo lesson.Repository) *PublishLessonHandler {
	return &PublishLessonHandler{
		lessonRepo: lessonRepo,
	}
}

// Handle executes the publish lesson command.
func (h *PublishLessonHandler) Handle(ctx context.Context, cmd PublishLessonCommand) (*PublishLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	l, err := h.lessonRepo.GetByID(ctx, cmd.LessonID)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	if err := l.Publish(now); err != nil {
		return nil, err
	}

	if err := h.lessonRepo.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("publish_lesson: failed to save lesson: %w", err)
	}

	return &PublishLessonResult{
		LessonID:    l.ID,
		PublishedAt: now,
	}, nil
}
