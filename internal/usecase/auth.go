package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/core/port"
	"github.com/arklim/social-platform-auth/internal/infra/security"
	"github.com/arklim/social-platform-auth/internal/repository"
)

var (
	// ErrEmailInUse indicates registration was attempted with an email that
	// already belongs to an account.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// The same value is returned for unknown emails and wrong passwords so
	// responses cannot be used as an account-existence oracle.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	codec  *security.TokenCodec
	audit  *AuditLogger
	now    func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, codec *security.TokenCodec, audit *AuditLogger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		audit:  audit,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	if now != nil {
		s.now = now
	}
	return s
}

// RegisterInput carries the registration payload. Role is accepted because
// clients may send it, but it is never honored: every new account starts as
// a regular user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     string
}

// Register creates a new account and issues a token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, string, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return domain.User{}, "", fmt.Errorf("email is required")
	}
	if input.Password == "" {
		return domain.User{}, "", fmt.Errorf("password is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, "", ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		// Role from the input is deliberately ignored; new accounts always
		// start as regular users.
		Role:      domain.RoleUser,
		CreatedAt: s.now().UTC(),
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = &name
	}

	if err := s.users.Create(ctx, user); err != nil {
		// The store's unique constraint is authoritative: a concurrent
		// registration can slip past the read check above.
		if isUniqueViolation(err) {
			return domain.User{}, "", ErrEmailInUse
		}
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}

	s.audit.Record(ctx, &user.ID, domain.AuditUserRegister, map[string]any{
		"email": user.Email,
	})

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return sanitized(user), token, nil
}

// LoginInput carries the login payload plus request metadata for the audit trail.
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// Login validates credentials and issues a token on success. Both failure
// branches record an audit entry before returning the shared
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (domain.User, string, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(ctx, nil, domain.AuditLoginFail, map[string]any{
				"reason": "unknown email",
				"email":  email,
			})
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil || !ok {
		s.audit.Record(ctx, &user.ID, domain.AuditLoginFail, map[string]any{
			"reason": "invalid password",
		})
		return domain.User{}, "", ErrInvalidCredentials
	}

	detail := map[string]any{}
	if input.IP != "" {
		detail["ip"] = input.IP
	}
	s.audit.Record(ctx, &user.ID, domain.AuditLoginSuccess, detail)

	token, err := s.codec.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	return sanitized(*user), token, nil
}

func sanitized(user domain.User) domain.User {
	user.PasswordHash = ""
	return user
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
