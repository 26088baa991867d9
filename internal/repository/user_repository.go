package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deskhive/deskhive/internal/database"
	"github.com/deskhive/deskhive/internal/models"
)

// UserRepository defines the interface for user account operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit int) ([]*models.User, error)
	Update(ctx context.Context, id int, patch models.UserPatch) error
	UpdateLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
	CountActiveAdmins(ctx context.Context) (int, error)
}

// UserSQLRepository handles database operations for the users table.
type UserSQLRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) *UserSQLRepository {
	return &UserSQLRepository{db: db}
}

const userColumns = `id, email, password_hash, full_name, role, is_active,
	company_id, department, job_title, phone, last_login_at, created_at, updated_at`

// Create inserts a new user. Email is stored lower-cased; uniqueness is
// therefore case-insensitive.
func (r *UserSQLRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	query := database.ConvertPlaceholders(`
		INSERT INTO users (email, password_hash, full_name, role, is_active,
			company_id, department, job_title, phone, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, string(user.Role), user.IsActive,
		user.CompanyID, user.Department, user.JobTitle, user.Phone, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil && id > 0 {
		user.ID = int(id)
		return nil
	}
	// Postgres does not support LastInsertId; look the row back up.
	created, err := r.GetByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to read back created user: %w", err)
	}
	user.ID = created.ID
	return nil
}

// GetByID retrieves a user by primary key.
func (r *UserSQLRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := database.ConvertPlaceholders(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email. Matching is case-insensitive: the
// lookup key is lower-cased the same way Create lowers the stored value.
func (r *UserSQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := database.ConvertPlaceholders(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// List returns the most recently created users, capped at limit.
func (r *UserSQLRepository) List(ctx context.Context, limit int) ([]*models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	query := database.ConvertPlaceholders(`
		SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT ?`)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Update applies a patch to a user record. The SET clause is assembled from
// the patch fields with placeholders only; values are never interpolated.
func (r *UserSQLRepository) Update(ctx context.Context, id int, patch models.UserPatch) error {
	var (
		sets []string
		args []interface{}
	)
	addSet := func(column string, value interface{}) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Email != nil {
		addSet("email", strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.FullName != nil {
		addSet("full_name", *patch.FullName)
	}
	if patch.Role != nil {
		addSet("role", string(*patch.Role))
	}
	if patch.IsActive != nil {
		addSet("is_active", *patch.IsActive)
	}
	if patch.CompanyID != nil {
		addSet("company_id", *patch.CompanyID)
	}
	if patch.Department != nil {
		addSet("department", *patch.Department)
	}
	if patch.JobTitle != nil {
		addSet("job_title", *patch.JobTitle)
	}
	if patch.Phone != nil {
		addSet("phone", *patch.Phone)
	}
	if patch.Password != nil {
		// The service hashes before it reaches this layer; Password here is
		// already a bcrypt hash.
		addSet("password_hash", *patch.Password)
	}
	if len(sets) == 0 {
		return nil
	}
	addSet("updated_at", time.Now().UTC())
	args = append(args, id)

	query := database.ConvertPlaceholders(
		`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRowsAffected(result)
}

// UpdateLastLogin stamps the last successful login time.
func (r *UserSQLRepository) UpdateLastLogin(ctx context.Context, id int, at time.Time) error {
	query := database.ConvertPlaceholders(
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, at.UTC(), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return requireRowsAffected(result)
}

// Delete removes a user row.
func (r *UserSQLRepository) Delete(ctx context.Context, id int) error {
	query := database.ConvertPlaceholders(`DELETE FROM users WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowsAffected(result)
}

// CountActiveAdmins returns how many active admin accounts exist. Used by the
// delete path to refuse removing the last one.
func (r *UserSQLRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	query := database.ConvertPlaceholders(
		`SELECT COUNT(*) FROM users WHERE role = ? AND is_active = ?`)
	var count int
	if err := r.db.QueryRowContext(ctx, query, string(models.RoleAdmin), true).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserSQLRepository) scanOne(row *sql.Row) (*models.User, error) {
	user, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

func (r *UserSQLRepository) scanRow(row rowScanner) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &role,
		&user.IsActive, &user.CompanyID, &user.Department, &user.JobTitle, &user.Phone,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	// Stored role strings may carry legacy casing; normalize once on read.
	user.Role = models.ParseRole(role)
	return &user, nil
}

func requireRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
