// Package postgres implements the PostgreSQL persistence layer for the
// internship service.
package postgres

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSON REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// LessonRepository implements lesson.Repository for PostgreSQL.
type LessonRepository struct {
	conn *Connection
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(conn *Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

const lessonColumns = `
	id, internship_id, name, description, is_published, created_at, updated_at
`

// Create creates a new lesson.
func (r *LessonRepository) Create(ctx context.Context, l *lesson.Lesson) error {
	query := `
		INSERT INTO lessons (
			id, internship_id, name, description, is_published, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		l.ID,
		l.InternshipID,
		l.Name,
		l.Description,
		l.IsPublished,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// GetByID returns a lesson by ID.
func (r *LessonRepository) GetByID(ctx context.Context, id string) (*lesson.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanLesson(row)
}

// Update updates a lesson.
func (r *LessonRepository) Update(ctx context.Context, l *lesson.Lesson) error {
	query := `
		UPDATE lessons SET
			name = $1,
			description = $2,
			is_published = $3,
			updated_at = $4
		WHERE id = $5
	`

	result, err := r.conn.Exec(ctx, query,
		l.Name,
		l.Description,
		l.IsPublished,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrLessonNotFound
	}

	return nil
}

// GetAll returns all lessons ordered by creation time.
func (r *LessonRepository) GetAll(ctx context.Context) ([]*lesson.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons ORDER BY created_at`

	return r.queryLessons(ctx, query)
}

// GetPublishedByInternship returns published lessons of an internship.
func (r *LessonRepository) GetPublishedByInternship(ctx context.Context, internshipID string) ([]*lesson.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE internship_id = $1 AND is_published
		ORDER BY created_at
	`

	return r.queryLessons(ctx, query, internshipID)
}

func (r *LessonRepository) queryLessons(ctx context.Context, query string, args ...interface{}) ([]*lesson.Lesson, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var result []*lesson.Lesson
	for rows.Next() {
		l, err := r.scanLesson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}

	return result, rows.Err()
}

// scanLesson scans a single lesson row.
func (r *LessonRepository) scanLesson(row interface{ Scan(dest ...any) error }) (*lesson.Lesson, error) {
	var l lesson.Lesson

	err := row.Scan(
		&l.ID,
		&l.InternshipID,
		&l.Name,
		&l.Description,
		&l.IsPublished,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrLessonNotFound
		}
		return nil, fmt.Errorf("failed to scan lesson: %w", err)
	}

	return &l, nil
}
