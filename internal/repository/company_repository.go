package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/models"
)

// CompanyRepository defines the interface for company operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id int) (*models.Company, error)
	List(ctx context.Context, limit int) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id int) error
}

// CompanySQLRepository handles database operations for the companies table.
type CompanySQLRepository struct {
	db *sql.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *sql.DB) *CompanySQLRepository {
	return &CompanySQLRepository{db: db}
}

const companyColumns = `id, name, domain, contact_email, contact_phone, is_active, created_at, updated_at`

// Create inserts a new company. Duplicate names map to ErrDuplicate.
func (r *CompanySQLRepository) Create(ctx context.Context, company *models.Company) error {
	now := time.Now().UTC()
	company.CreatedAt = now
	company.UpdatedAt = now

	query := database.ConvertPlaceholders(`
		INSERT INTO companies (name, domain, contact_email, contact_phone, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	args := []interface{}{
		company.Name, company.Domain, company.ContactEmail, company.ContactPhone,
		company.IsActive, now, now,
	}

	// lib/pq does not implement LastInsertId, so the Postgres arm asks for
	// the id in the statement itself.
	if database.IsPostgreSQL() {
		err := r.db.QueryRowContext(ctx, query+` RETURNING id`, args...).Scan(&company.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert company: %w", err)
		}
		return nil
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert company: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil && id > 0 {
		company.ID = int(id)
	}
	return nil
}

// GetByID retrieves a company by primary key.
func (r *CompanySQLRepository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	query := database.ConvertPlaceholders(`SELECT ` + companyColumns + ` FROM companies WHERE id = ?`)

	var c models.Company
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Domain,
		&c.ContactEmail, &c.ContactPhone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query company: %w", err)
	}
	return &c, nil
}

// List returns companies ordered by name.
func (r *CompanySQLRepository) List(ctx context.Context, limit int) ([]*models.Company, error) {
	if limit <= 0 {
		limit = 100
	}
	query := database.ConvertPlaceholders(
		`SELECT ` + companyColumns + ` FROM companies ORDER BY name LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Domain, &c.ContactEmail,
			&c.ContactPhone, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, &c)
	}
	return companies, rows.Err()
}

// Update rewrites the mutable company fields.
func (r *CompanySQLRepository) Update(ctx context.Context, company *models.Company) error {
	query := database.ConvertPlaceholders(`
		UPDATE companies SET name = ?, domain = ?, contact_email = ?, contact_phone = ?,
			is_active = ?, updated_at = ?
		WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		company.Name, company.Domain, company.ContactEmail, company.ContactPhone,
		company.IsActive, time.Now().UTC(), company.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update company: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a company row.
func (r *CompanySQLRepository) Delete(ctx context.Context, id int) error {
	query := database.ConvertPlaceholders(`DELETE FROM companies WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return requireRowsAffected(result)
}
