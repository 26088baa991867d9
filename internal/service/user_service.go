package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/deskhive/deskhive/internal/models"
	"github.com/deskhive/deskhive/internal/repository"
)

var (
	// ErrLastAdmin is returned when a delete or deactivation would remove
	// the only remaining active admin.
	ErrLastAdmin = errors.New("cannot remove the last admin account")

	ErrEmailTaken = errors.New("email already in use")
)

// UserService manages account lifecycle.
type UserService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	activity *ActivityLogger
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, sessions repository.SessionRepository, activity *ActivityLogger) *UserService {
	return &UserService{users: users, sessions: sessions, activity: activity}
}

// CreateUserInput carries the fields for account creation.
type CreateUserInput struct {
	Email      string
	Password   string
	FullName   string
	Role       string
	CompanyID  *int
	Department *string
	JobTitle   *string
	Phone      *string
}

// Create registers a new account. The role must be one of the known values;
// arbitrary role strings are rejected here rather than stored.
func (s *UserService) Create(ctx context.Context, actorID *int, in CreateUserInput) (*models.User, error) {
	if err := validateEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	role := models.ParseRole(in.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: role must be admin, agent or customer", ErrValidation)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Role:         role,
		IsActive:     true,
		CompanyID:    in.CompanyID,
		Department:   in.Department,
		JobTitle:     in.JobTitle,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.activity.RecordAction(actorID, models.ActionUserCreated, "user", fmt.Sprint(user.ID),
		map[string]interface{}{"email": user.Email, "role": string(user.Role)})
	return user, nil
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns the most recently created users.
func (s *UserService) List(ctx context.Context, limit int) ([]*models.User, error) {
	return s.users.List(ctx, limit)
}

// Update applies a patch. Role changes are validated against the closed set;
// deactivating or demoting the last active admin is refused. A password in
// the patch arrives as plaintext and is hashed here.
func (s *UserService) Update(ctx context.Context, actorID *int, id int, patch models.UserPatch) (*models.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return nil, err
		}
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, fmt.Errorf("%w: role must be admin, agent or customer", ErrValidation)
	}

	demotes := patch.Role != nil && models.ParseRole(string(current.Role)) == models.RoleAdmin && *patch.Role != models.RoleAdmin
	deactivates := patch.IsActive != nil && !*patch.IsActive && current.IsActive
	if demotes || deactivates {
		if err := s.requireAnotherAdmin(ctx, current); err != nil {
			return nil, err
		}
	}

	if patch.Password != nil {
		if len(*patch.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
		}
		hash, err := HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.Password = &hash
	}

	if err := s.users.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// Deactivation revokes the user's live sessions.
	if deactivates {
		if _, err := s.sessions.DeleteByUserID(ctx, id); err != nil {
			return nil, err
		}
	}

	s.activity.RecordAction(actorID, models.ActionUserUpdated, "user", fmt.Sprint(id), nil)
	return s.users.GetByID(ctx, id)
}

// Delete removes an account. Deleting the last remaining active admin is
// refused so the system cannot be locked out of administration.
func (s *UserService) Delete(ctx context.Context, actorID *int, id int) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireAnotherAdmin(ctx, user); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteByUserID(ctx, id); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.RecordAction(actorID, models.ActionUserDeleted, "user", fmt.Sprint(id),
		map[string]interface{}{"email": user.Email})
	return nil
}

// requireAnotherAdmin fails with ErrLastAdmin when the given user is the only
// active admin left.
func (s *UserService) requireAnotherAdmin(ctx context.Context, user *models.User) error {
	if models.ParseRole(string(user.Role)) != models.RoleAdmin || !user.IsActive {
		return nil
	}
	count, err := s.users.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

// ErrValidation marks input validation failures; handlers map it to 400.
var ErrValidation = errors.New("validation failed")

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}
