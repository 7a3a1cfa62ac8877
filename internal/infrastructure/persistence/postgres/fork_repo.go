package postgres

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/provisioning"
	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENDING FORK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PendingForkRepository implements provisioning.Repository for PostgreSQL.
type PendingForkRepository struct {
	conn *Connection
}

// NewPendingForkRepository creates a new PendingForkRepository.
func NewPendingForkRepository(conn *Connection) *PendingForkRepository {
	return &PendingForkRepository{conn: conn}
}

const pendingForkColumns = `
	id, task_id, user_id, username, repository_id, attempts, last_error, created_at, updated_at
`

// Create records a failed fork for later retry.
func (r *PendingForkRepository) Create(ctx context.Context, pf *provisioning.PendingFork) error {
	query := `
		INSERT INTO pending_forks (
			id, task_id, user_id, username, repository_id, attempts, last_error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		pf.ID,
		pf.TaskID,
		pf.UserID,
		pf.Username,
		pf.RepositoryID,
		pf.Attempts,
		pf.LastError,
		pf.CreatedAt,
		pf.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create pending fork: %w", err)
	}

	return nil
}

// Update updates a pending fork record.
func (r *PendingForkRepository) Update(ctx context.Context, pf *provisioning.PendingFork) error {
	query := `
		UPDATE pending_forks SET
			attempts = $1,
			last_error = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query, pf.Attempts, pf.LastError, pf.UpdatedAt, pf.ID)
	if err != nil {
		return fmt.Errorf("failed to update pending fork: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// Delete removes a pending fork record after a successful retry.
func (r *PendingForkRepository) Delete(ctx context.Context, id string) error {
	result, err := r.conn.Exec(ctx, `DELETE FROM pending_forks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending fork: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrNotFound
	}

	return nil
}

// GetPending returns pending forks in creation order, oldest first.
func (r *PendingForkRepository) GetPending(ctx context.Context, limit int) ([]*provisioning.PendingFork, error) {
	query := `
		SELECT ` + pendingForkColumns + `
		FROM pending_forks
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending forks: %w", err)
	}
	defer rows.Close()

	var result []*provisioning.PendingFork
	for rows.Next() {
		pf, err := r.scanPendingFork(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pf)
	}

	return result, rows.Err()
}

// GetByTaskAndUser returns the pending fork for a (task, user) pair.
func (r *PendingForkRepository) GetByTaskAndUser(ctx context.Context, taskID, userID string) (*provisioning.PendingFork, error) {
	query := `SELECT ` + pendingForkColumns + ` FROM pending_forks WHERE task_id = $1 AND user_id = $2`

	row := r.conn.QueryRow(ctx, query, taskID, userID)
	return r.scanPendingFork(row)
}

func (r *PendingForkRepository) scanPendingFork(row interface{ Scan(dest ...any) error }) (*provisioning.PendingFork, error) {
	var pf provisioning.PendingFork

	err := row.Scan(
		&pf.ID,
		&pf.TaskID,
		&pf.UserID,
		&pf.Username,
		&pf.RepositoryID,
		&pf.Attempts,
		&pf.LastError,
		&pf.CreatedAt,
		&pf.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan pending fork: %w", err)
	}

	return &pf, nil
}
