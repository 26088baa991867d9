package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

// SessionService validates bearer tokens and manages session lifecycle.
type SessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	now      func() time.Time
}

// NewSessionService creates a new session service.
func NewSessionService(sessions repository.SessionRepository, users repository.UserRepository) *SessionService {
	return &SessionService{sessions: sessions, users: users, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// Validate resolves a bearer token to the caller's identity.
//
// Fails with ErrSessionInvalid for unknown or expired tokens and with
// ErrAccountInactive when the owning account has been disabled since login.
// Validation does not extend the session lifetime.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, ErrSessionInvalid
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return &models.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     models.ParseRole(string(user.Role)),
	}, nil
}

// CleanupExpired removes expired session rows. Invoked from the CLI; the
// validator rejects expired sessions either way.
func (s *SessionService) CleanupExpired(ctx context.Context) (int, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

// RevokeUserSessions deletes all sessions belonging to a user, e.g. after
// deactivation. Returns the number of sessions removed.
func (s *SessionService) RevokeUserSessions(ctx context.Context, userID int) (int, error) {
	return s.sessions.DeleteByUserID(ctx, userID)
}
