// Package postgres implements the PostgreSQL persistence layer for the
// internship service.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/lesson"
	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// TASK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TaskRepository implements lesson.TaskRepository for PostgreSQL.
type TaskRepository struct {
	conn *Connection
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(conn *Connection) *TaskRepository {
	return &TaskRepository{conn: conn}
}

const taskColumns = `
	id, lesson_id, name, description, repository_url, repository_id,
	publish_date, created_at, updated_at
`

// Create creates a new task.
func (r *TaskRepository) Create(ctx context.Context, t *lesson.Task) error {
	query := `
		INSERT INTO tasks (
			id, lesson_id, name, description, repository_url, repository_id,
			publish_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		t.ID,
		t.LessonID,
		t.Name,
		t.Description,
		t.RepositoryURL,
		t.RepositoryID,
		t.PublishDate,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID returns a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*lesson.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanTask(row)
}

// GetByName returns a task by name. Task names match GitLab project names,
// so this is how push events are traced back to tasks.
func (r *TaskRepository) GetByName(ctx context.Context, name string) (*lesson.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE name = $1`

	row := r.conn.QueryRow(ctx, query, name)
	return r.scanTask(row)
}

// Update updates a task.
func (r *TaskRepository) Update(ctx context.Context, t *lesson.Task) error {
	query := `
		UPDATE tasks SET
			name = $1,
			description = $2,
			repository_url = $3,
			repository_id = $4,
			publish_date = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		t.Name,
		t.Description,
		t.RepositoryURL,
		t.RepositoryID,
		t.PublishDate,
		t.UpdatedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrTaskNotFound
	}

	return nil
}

// GetAll returns all tasks ordered by creation time.
func (r *TaskRepository) GetAll(ctx context.Context) ([]*lesson.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY created_at`

	return r.queryTasks(ctx, query)
}

// GetPublished returns tasks whose publish date is not after the given time.
func (r *TaskRepository) GetPublished(ctx context.Context, asOf time.Time) ([]*lesson.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE publish_date IS NOT NULL AND publish_date <= $1
		ORDER BY publish_date
	`

	return r.queryTasks(ctx, query, asOf)
}

// GetUnpublishedByLesson returns tasks of a lesson without a publish date,
// in stable creation order.
func (r *TaskRepository) GetUnpublishedByLesson(ctx context.Context, lessonID string) ([]*lesson.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE lesson_id = $1 AND publish_date IS NULL
		ORDER BY created_at
	`

	return r.queryTasks(ctx, query, lessonID)
}

// GetByInternship returns all tasks of an internship through its lessons.
func (r *TaskRepository) GetByInternship(ctx context.Context, internshipID string) ([]*lesson.Task, error) {
	query := `
		SELECT t.id, t.lesson_id, t.name, t.description, t.repository_url, t.repository_id,
		       t.publish_date, t.created_at, t.updated_at
		FROM tasks t
		JOIN lessons l ON l.id = t.lesson_id
		WHERE l.internship_id = $1
		ORDER BY t.created_at
	`

	return r.queryTasks(ctx, query, internshipID)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...interface{}) ([]*lesson.Task, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var result []*lesson.Task
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, rows.Err()
}

// scanTask scans a single task row.
func (r *TaskRepository) scanTask(row interface{ Scan(dest ...any) error }) (*lesson.Task, error) {
	var t lesson.Task

	err := row.Scan(
		&t.ID,
		&t.LessonID,
		&t.Name,
		&t.Description,
		&t.RepositoryURL,
		&t.RepositoryID,
		&t.PublishDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}

	return &t, nil
}
