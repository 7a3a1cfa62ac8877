// Package postgres implements the PostgreSQL persistence layer for the
// internship service.
package postgres

import (
	"context"
	"fmt"

	"github.com/internship-hub/internship-service/internal/domain/internship"
	"github.com/internship-hub/internship-service/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ApplicationRepository implements internship.ApplicationRepository for PostgreSQL.
type ApplicationRepository struct {
	conn *Connection
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(conn *Connection) *ApplicationRepository {
	return &ApplicationRepository{conn: conn}
}

const applicationColumns = `
	id, internship_id, name, phone_number, email, status, created_at
`

// Create creates a new application.
// The unique constraint on (phone_number, internship_id) surfaces as
// shared.ErrApplicationExists.
func (r *ApplicationRepository) Create(ctx context.Context, a *internship.Application) error {
	query := `
		INSERT INTO applications (
			id, internship_id, name, phone_number, email, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		a.ID,
		a.InternshipID,
		a.Name,
		a.PhoneNumber,
		a.Email,
		string(a.Status),
		a.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrApplicationExists
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID returns an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*internship.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanApplication(row)
}

// GetByPhoneAndInternship returns an application by its natural key.
func (r *ApplicationRepository) GetByPhoneAndInternship(ctx context.Context, phoneNumber, internshipID string) (*internship.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE phone_number = $1 AND internship_id = $2`

	row := r.conn.QueryRow(ctx, query, phoneNumber, internshipID)
	return r.scanApplication(row)
}

// Update updates an application.
func (r *ApplicationRepository) Update(ctx context.Context, a *internship.Application) error {
	query := `
		UPDATE applications SET
			name = $1,
			phone_number = $2,
			email = $3,
			status = $4,
			created_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		a.Name,
		a.PhoneNumber,
		a.Email,
		string(a.Status),
		a.CreatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrApplicationNotFound
	}

	return nil
}

// GetAll returns all applications ordered by creation time.
func (r *ApplicationRepository) GetAll(ctx context.Context) ([]*internship.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var result []*internship.Application
	for rows.Next() {
		a, err := r.scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

// GetByStatus returns applications with the given status.
func (r *ApplicationRepository) GetByStatus(ctx context.Context, status internship.ApplicationStatus) ([]*internship.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.conn.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query applications by status: %w", err)
	}
	defer rows.Close()

	var result []*internship.Application
	for rows.Next() {
		a, err := r.scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	return result, rows.Err()
}

// scanApplication scans a single application row.
func (r *ApplicationRepository) scanApplication(row interface{ Scan(dest ...any) error }) (*internship.Application, error) {
	var a internship.Application
	var status string

	err := row.Scan(
		&a.ID,
		&a.InternshipID,
		&a.Name,
		&a.PhoneNumber,
		&a.Email,
		&status,
		&a.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	a.Status = internship.ApplicationStatus(status)
	return &a, nil
}
