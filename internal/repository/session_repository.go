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

// SessionRepository defines the interface for session operations.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID int) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// SessionSQLRepository handles database operations for the sessions table.
// One row per session; the token column is the primary key.
type SessionSQLRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB) *SessionSQLRepository {
	return &SessionSQLRepository{db: db}
}

// Create stores a new session row.
func (r *SessionSQLRepository) Create(ctx context.Context, session *models.Session) error {
	if session.Token == "" {
		return errors.New("session token is required")
	}

	query := database.ConvertPlaceholders(`
		INSERT INTO sessions (token, user_id, expires_at, created_at, remote_addr, user_agent)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		session.Token, session.UserID, session.ExpiresAt.UTC(), session.CreatedAt.UTC(),
		session.RemoteAddr, session.UserAgent)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by exact token match. Expiry is not checked
// here; the validator owns that decision.
func (r *SessionSQLRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := database.ConvertPlaceholders(`
		SELECT token, user_id, expires_at, created_at, remote_addr, user_agent
		FROM sessions WHERE token = ?`)

	var s models.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt, &s.RemoteAddr, &s.UserAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &s, nil
}

// Delete removes a session by token (logout).
func (r *SessionSQLRepository) Delete(ctx context.Context, token string) error {
	query := database.ConvertPlaceholders(`DELETE FROM sessions WHERE token = ?`)
	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireRowsAffected(result)
}

// DeleteByUserID removes all sessions for a user (e.g. on deactivation).
func (r *SessionSQLRepository) DeleteByUserID(ctx context.Context, userID int) (int, error) {
	query := database.ConvertPlaceholders(`DELETE FROM sessions WHERE user_id = ?`)
	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// DeleteExpired removes sessions whose expiry has passed. Nothing depends on
// this running; expired sessions are rejected at validation either way.
func (r *SessionSQLRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	query := database.ConvertPlaceholders(`DELETE FROM sessions WHERE expires_at <= ?`)
	result, err := r.db.ExecContext(ctx, query, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	return int(n), err
}
