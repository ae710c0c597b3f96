package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/repository"
)

var (
	// ErrInvalidRole indicates a role value outside the known set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrUserNotFound indicates the target user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDelete indicates an administrator tried to delete their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
)

// UserService implements administrative operations over user accounts.
type UserService struct {
	users port.UserRepository
	audit *AuditLogger
}

// NewUserService constructs a UserService instance.
func NewUserService(users port.UserRepository, audit *AuditLogger) *UserService {
	return &UserService{users: users, audit: audit}
}

// GetByID returns a single user without the password hash.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return sanitized(*user), nil
}

// ListUsers returns every account without password hashes.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// ChangeRole sets a new role on the target account and records the change
// attributed to the acting administrator.
func (s *UserService) ChangeRole(ctx context.Context, actorID, targetID string, newRole domain.Role) (domain.User, error) {
	if !newRole.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.UpdateRole(ctx, targetID, newRole); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update role: %w", err)
	}

	s.audit.Record(ctx, &actorID, domain.AuditRoleChange, map[string]any{
		"targetUser": target.Email,
		"newRole":    string(newRole),
	})

	target.Role = newRole
	return sanitized(*target), nil
}

// DeleteUser removes the target account. Administrators cannot delete
// their own account.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfDelete
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.audit.Record(ctx, &actorID, domain.AuditUserDelete, map[string]any{
		"targetUser": target.Email,
	})

	return nil
}
