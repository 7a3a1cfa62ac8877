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
// INTERNSHIP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// InternshipRepository implements internship.Repository for PostgreSQL.
type InternshipRepository struct {
	conn *Connection
}

// NewInternshipRepository creates a new InternshipRepository.
func NewInternshipRepository(conn *Connection) *InternshipRepository {
	return &InternshipRepository{conn: conn}
}

const internshipColumns = `
	id, name, description, status,
	registration_start, registration_end, start_date, end_date,
	created_at, updated_at
`

// Create creates a new internship.
func (r *InternshipRepository) Create(ctx context.Context, i *internship.Internship) error {
	query := `
		INSERT INTO internships (
			id, name, description, status,
			registration_start, registration_end, start_date, end_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		i.ID,
		i.Name,
		i.Description,
		string(i.Status),
		i.Dates.RegistrationStart,
		i.Dates.RegistrationEnd,
		i.Dates.Start,
		i.Dates.End,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create internship: %w", err)
	}

	return nil
}

// GetByID returns an internship by ID.
func (r *InternshipRepository) GetByID(ctx context.Context, id string) (*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanInternship(row)
}

// Update updates an internship.
func (r *InternshipRepository) Update(ctx context.Context, i *internship.Internship) error {
	query := `
		UPDATE internships SET
			name = $1,
			description = $2,
			status = $3,
			registration_start = $4,
			registration_end = $5,
			start_date = $6,
			end_date = $7,
			updated_at = $8
		WHERE id = $9
	`

	result, err := r.conn.Exec(ctx, query,
		i.Name,
		i.Description,
		string(i.Status),
		i.Dates.RegistrationStart,
		i.Dates.RegistrationEnd,
		i.Dates.Start,
		i.Dates.End,
		i.UpdatedAt,
		i.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update internship: %w", err)
	}

	if result.RowsAffected() == 0 {
		return shared.ErrInternshipNotFound
	}

	return nil
}

// GetAll returns all internships ordered by start date.
func (r *InternshipRepository) GetAll(ctx context.Context) ([]*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships ORDER BY start_date DESC`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query internships: %w", err)
	}
	defer rows.Close()

	var result []*internship.Internship
	for rows.Next() {
		i, err := r.scanInternship(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, i)
	}

	return result, rows.Err()
}

// GetByStatus returns internships with the given status.
func (r *InternshipRepository) GetByStatus(ctx context.Context, status internship.Status) ([]*internship.Internship, error) {
	query := `SELECT ` + internshipColumns + ` FROM internships WHERE status = $1 ORDER BY start_date DESC`

	rows, err := r.conn.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query internships by status: %w", err)
	}
	defer rows.Close()

	var result []*internship.Internship
	for rows.Next() {
		i, err := r.scanInternship(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, i)
	}

	return result, rows.Err()
}

// scanInternship scans a single internship row.
func (r *InternshipRepository) scanInternship(row interface{ Scan(dest ...any) error }) (*internship.Internship, error) {
	var i internship.Internship
	var status string

	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&status,
		&i.Dates.RegistrationStart,
		&i.Dates.RegistrationEnd,
		&i.Dates.Start,
		&i.Dates.End,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrInternshipNotFound
		}
		return nil, fmt.Errorf("failed to scan internship: %w", err)
	}

	i.Status = internship.Status(status)
	return &i, nil
}
