package port

import (
	"context"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
// Lookups signal a missing row with repository.ErrNotFound so callers can
// distinguish absence from infrastructure failure.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}
