package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/deskhive/deskhive/internal/metrics"
	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

// Sentinel errors at the auth boundary. Handlers map these onto API error
// codes; nothing below the handler ever sees a password or hash.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrSessionInvalid     = errors.New("invalid or expired session")
)

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User      models.PublicProfile `json:"user"`
	Token     string               `json:"token"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// AuthService verifies credentials and issues sessions.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	activity *ActivityLogger
	logger   *log.Logger
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, activity *ActivityLogger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		activity: activity,
		logger:   log.New(log.Writer(), "[AUTH] ", log.LstdFlags),
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Login verifies an email/password pair and issues a 24-hour session.
//
// A missing user and a wrong password both return ErrInvalidCredentials so
// the response shape cannot be used for account enumeration. bcrypt's
// comparison is constant-time over the hash.
func (s *AuthService) Login(ctx context.Context, email, password, remoteAddr, userAgent string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a bcrypt comparison anyway so the two failure paths
			// take comparable time.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	if !user.IsActive {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.activity.RecordAction(nil, models.ActionLoginFailed, "user", fmt.Sprint(user.ID),
			map[string]interface{}{"remote_addr": remoteAddr})
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &models.Session{
		Token:      generateToken(),
		UserID:     user.ID,
		ExpiresAt:  now.Add(models.SessionTTL),
		CreatedAt:  now,
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("session create failed: %w", err)
	}

	// Last-login stamp failing does not fail the login.
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Printf("failed to update last login for user %d: %v", user.ID, err)
	}

	actorID := user.ID
	s.activity.RecordAction(&actorID, models.ActionLogin, "user", fmt.Sprint(user.ID),
		map[string]interface{}{"remote_addr": remoteAddr, "user_agent": userAgent})
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	return &LoginResult{
		User:      user.Profile(),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout deletes the session. Unknown tokens are a no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	actorID := session.UserID
	s.activity.RecordAction(&actorID, models.ActionLogout, "session", "", nil)
	return nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// dummyHash is a bcrypt hash of an unguessable value, used to equalize
// timing when the user does not exist.
var dummyHash = func() []byte {
	h, _ := bcrypt.GenerateFromPassword(randomBytes(16), bcrypt.DefaultCost)
	return h
}()

// generateToken creates a secure random session token.
// Returns a 64-character hex string (256 bits of entropy).
func generateToken() string {
	return hex.EncodeToString(randomBytes(32))
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform RNG is broken; issuing a
		// predictable token is worse than refusing to start.
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return b
}
