// Package postgres implements the PostgreSQL persistence layer for the
// internship service.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internship-hub/internship-service/internal/domain/shared"
	"github.com/internship-hub/internship-service/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `
	id, username, name, email, password_hash, role, internship_id, created_at, updated_at
`

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (
			id, username, name, email, password_hash, role, internship_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		nullableID(u.InternshipID),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanUser(row)
}

// GetByUsername returns a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	row := r.conn.QueryRow(ctx, query, username)
	return r.scanUser(row)
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	row := r.conn.QueryRow(ctx, query, email)
	return r.scanUser(row)
}

// Update updates a user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			username = $1,
			name = $2,
			email = $3,
			password_hash = $4,
			role = $5,
			internship_id = $6,
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.conn.Exec(ctx, query,
		u.Username,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		nullableID(u.InternshipID),
		u.UpdatedAt,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// GetAll returns all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	return r.queryUsers(ctx, query)
}

// GetByInternshipAndRole returns users of an internship with the given role.
func (r *UserRepository) GetByInternshipAndRole(ctx context.Context, internshipID string, role user.Role) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE internship_id = $1 AND role = $2
		ORDER BY created_at
	`

	return r.queryUsers(ctx, query, internshipID, string(role))
}

// ─────────────────────────────────────────────────────────────────────────────
// Archival
// ─────────────────────────────────────────────────────────────────────────────

// ArchiveWithSolutions switches the user to the ARCHIVED role and marks all
// their solutions archived in a single transaction. Called only after the
// GitLab account has been blocked, so a crash between the remote and local
// steps leaves a blocked account that archival retries will converge.
func (r *UserRepository) ArchiveWithSolutions(ctx context.Context, userID string) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		now := time.Now().UTC()

		result, err := tx.Exec(ctx,
			`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
			string(user.RoleArchived), now, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to archive user: %w", err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrUserNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE solutions SET is_archived = TRUE, updated_at = $1 WHERE user_id = $2`,
			now, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to archive solutions: %w", err)
		}

		return nil
	})
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]*user.User, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var result []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}

	return result, rows.Err()
}

// scanUser scans a single user row.
func (r *UserRepository) scanUser(row interface{ Scan(dest ...any) error }) (*user.User, error) {
	var u user.User
	var role string
	var internshipID *string

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&internshipID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Role = user.Role(role)
	if internshipID != nil {
		u.InternshipID = *internshipID
	}

	return &u, nil
}

// nullableID converts an empty ID to NULL for UUID columns.
func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
