package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/solution"
)

// ══════════════════════════════════════════════════════════════════════════════
// SOLUTION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SolutionRepository implements solution.Repository for PostgreSQL.
// The unique index on repository_url is what makes webhook ingestion
// idempotent under concurrent deliveries.
type SolutionRepository struct {
	conn *Connection
}

// NewSolutionRepository creates a new SolutionRepository.
func NewSolutionRepository(conn *Connection) *SolutionRepository {
	return &SolutionRepository{conn: conn}
}

const solutionColumns = `
	id, repository_url, last_commit_time, last_commit_url, status, comment,
	checked_time, is_archived, user_id, task_id, created_at, updated_at
`

// Create creates a new solution.
func (r *SolutionRepository) Create(ctx context.Context, s *solution.Solution) error {
	query := `
		INSERT INTO solutions (
			id, repository_url, last_commit_time, last_commit_url, status, comment,
			checked_time, is_archived, user_id, task_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.RepositoryURL,
		s.LastCommitTime,
		s.LastCommitURL,
		string(s.Status),
		s.Comment,
		s.CheckedTime,
		s.IsArchived,
		s.UserID,
		s.TaskID,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrSolutionExists
		}
		return fmt.Errorf("failed to create solution: %w", err)
	}

	return nil
}

// GetByID returns a solution by ID.
func (r *SolutionRepository) GetByID(ctx context.Context, id string) (*solution.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSolution(row)
}

// GetByRepositoryURL returns the solution tied to a fork URL, exact match.
func (r *SolutionRepository) GetByRepositoryURL(ctx context.Context, repositoryURL string) (*solution.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions WHERE repository_url = $1`

	row := r.conn.QueryRow(ctx, query, repositoryURL)
	return r.scanSolution(row)
}

// Update updates a solution.
func (r *SolutionRepository) Update(ctx context.Context, s *solution.Solution) error {
	query := `
		UPDATE solutions SET
			last_commit_time = $1,
			last_commit_url = $2,
			status = $3,
			comment = $4,
			checked_time = $5,
			is_archived = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		s.LastCommitTime,
		s.LastCommitURL,
		string(s.Status),
		s.Comment,
		s.CheckedTime,
		s.IsArchived,
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update solution: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrSolutionNotFound
	}

	return nil
}

// GetAll returns all solutions.
func (r *SolutionRepository) GetAll(ctx context.Context) ([]*solution.Solution, error) {
	query := `SELECT ` + solutionColumns + ` FROM solutions ORDER BY created_at`

	return r.querySolutions(ctx, query)
}

// GetByStatus returns non-archived solutions with the given status.
func (r *SolutionRepository) GetByStatus(ctx context.Context, status solution.Status) ([]*solution.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE status = $1 AND is_archived = FALSE
		ORDER BY last_commit_time
	`

	return r.querySolutions(ctx, query, string(status))
}

// GetByTask returns non-archived solutions for a task.
func (r *SolutionRepository) GetByTask(ctx context.Context, taskID string) ([]*solution.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE task_id = $1 AND is_archived = FALSE
		ORDER BY last_commit_time
	`

	return r.querySolutions(ctx, query, taskID)
}

// GetByUser returns all solutions of a user, archived included.
func (r *SolutionRepository) GetByUser(ctx context.Context, userID string) ([]*solution.Solution, error) {
	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE user_id = $1
		ORDER BY created_at
	`

	return r.querySolutions(ctx, query, userID)
}

// GetByUserAndTasks returns the user's solutions for the given tasks.
func (r *SolutionRepository) GetByUserAndTasks(ctx context.Context, userID string, taskIDs []string) ([]*solution.Solution, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + solutionColumns + `
		FROM solutions
		WHERE user_id = $1 AND task_id = ANY($2)
		ORDER BY created_at
	`

	return r.querySolutions(ctx, query, userID, taskIDs)
}

// ArchiveByUser marks all of a user's solutions archived with one statement.
func (r *SolutionRepository) ArchiveByUser(ctx context.Context, userID string) error {
	query := `UPDATE solutions SET is_archived = TRUE, updated_at = $1 WHERE user_id = $2`

	_, err := r.conn.Exec(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to archive solutions: %w", err)
	}

	return nil
}

func (r *SolutionRepository) querySolutions(ctx context.Context, query string, args ...interface{}) ([]*solution.Solution, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query solutions: %w", err)
	}
	defer rows.Close()

	var result []*solution.Solution
	for rows.Next() {
		s, err := r.scanSolution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}

	return result, rows.Err()
}

// scanSolution scans a single solution row.
func (r *SolutionRepository) scanSolution(row interface{ Scan(dest ...any) error }) (*solution.Solution, error) {
	var s solution.Solution
	var status string

	err := row.Scan(
		&s.ID,
		&s.RepositoryURL,
		&s.LastCommitTime,
		&s.LastCommitURL,
		&status,
		&s.Comment,
		&s.CheckedTime,
		&s.IsArchived,
		&s.UserID,
		&s.TaskID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSolutionNotFound
		}
		return nil, fmt.Errorf("failed to scan solution: %w", err)
	}

	s.Status = solution.Status(status)
	return &s, nil
}
