package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/social-platform-auth/internal/core/domain"
	"github.com/arklim/social-platform-auth/internal/infra/security"
	"github.com/arklim/social-platform-auth/internal/repository"
)

type userRepoMock struct {
	byID      map[string]domain.User
	createErr error
	created   []domain.User

	updateRoleID  string
	updateRoleTo  domain.Role
	updateRoleErr error
	deletedID     string
	deleteErr     error
	listErr       error
}

func newUserRepoMock(users ...domain.User) *userRepoMock {
	m := &userRepoMock{byID: make(map[string]domain.User)}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *userRepoMock) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, user)
	m.byID[user.ID] = user
	return nil
}

func (m *userRepoMock) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (m *userRepoMock) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) List(context.Context) ([]domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	users := make([]domain.User, 0, len(m.byID))
	for _, user := range m.byID {
		users = append(users, user)
	}
	return users, nil
}

func (m *userRepoMock) UpdateRole(_ context.Context, id string, role domain.Role) error {
	if m.updateRoleErr != nil {
		return m.updateRoleErr
	}
	user, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Role = role
	m.byID[id] = user
	m.updateRoleID = id
	m.updateRoleTo = role
	return nil
}

func (m *userRepoMock) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	m.deletedID = id
	return nil
}

type auditRepoMock struct {
	entries   []domain.AuditEntry
	appendErr error
	listErr   error
	listLimit int
}

func (m *auditRepoMock) Append(_ context.Context, entry domain.AuditEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *auditRepoMock) List(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	m.listLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *auditRepoMock) lastAction(t *testing.T) domain.AuditEntry {
	t.Helper()
	if len(m.entries) == 0 {
		t.Fatalf("expected at least one audit entry")
	}
	return m.entries[len(m.entries)-1]
}

type publisherMock struct {
	events []domain.AuditEntry
	err    error
}

func (m *publisherMock) PublishAuditEvent(_ context.Context, entry domain.AuditEntry) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, entry)
	return nil
}

func newTestHasher(t *testing.T) *security.Argon2Hasher {
	t.Helper()
	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2Hasher returned error: %v", err)
	}
	return hasher
}

func newTestCodec(t *testing.T) *security.TokenCodec {
	t.Helper()
	codec, err := security.NewTokenCodec("test-secret", "auth-service", time.Minute)
	if err != nil {
		t.Fatalf("NewTokenCodec returned error: %v", err)
	}
	return codec
}

func newTestAuthService(t *testing.T, users *userRepoMock, audit *auditRepoMock) (*AuthService, *security.TokenCodec) {
	t.Helper()
	codec := newTestCodec(t)
	logger := NewAuditLogger(audit, nil, nil)
	return NewAuthService(users, newTestHasher(t), codec, logger), codec
}

func TestAuthServiceRegisterIgnoresRequestedRole(t *testing.T) {
	users := newUserRepoMock()
	audit := &auditRepoMock{}
	service, codec := newTestAuthService(t, users, audit)

	user, token, err := service.Register(context.Background(), RegisterInput{
		Email:    "mallory@example.com",
		Password: "password123",
		Name:     "Mallory",
		Role:     "ADMIN",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Role != domain.RoleUser {
		t.Fatalf("expected new account to be USER, got %s", user.Role)
	}
	if len(users.created) != 1 {
		t.Fatalf("expected one created user, got %d", len(users.created))
	}
	if users.created[0].Role != domain.RoleUser {
		t.Fatalf("expected persisted role USER, got %s", users.created[0].Role)
	}
	if user.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped from the returned user")
	}

	subject, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if subject != user.ID {
		t.Fatalf("expected token subject %s, got %s", user.ID, subject)
	}

	entry := audit.lastAction(t)
	if entry.Action != domain.AuditUserRegister {
		t.Fatalf("expected USER_REGISTER audit entry, got %s", entry.Action)
	}
	if entry.ActorID == nil || *entry.ActorID != user.ID {
		t.Fatalf("expected audit actor to be the new user")
	}
	if entry.Detail["email"] != "mallory@example.com" {
		t.Fatalf("expected audit detail to carry the email, got %v", entry.Detail)
	}
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	existing := domain.User{ID: "user-1", Email: "taken@example.com", Role: domain.RoleUser}
	users := newUserRepoMock(existing)
	audit := &auditRepoMock{}
	service, _ := newTestAuthService(t, users, audit)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("expected no audit entries for rejected registration")
	}
}

func TestAuthServiceRegisterUniqueViolationRace(t *testing.T) {
	users := newUserRepoMock()
	users.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	audit := &auditRepoMock{}
	service, _ := newTestAuthService(t, users, audit)

	_, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "race@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse for unique violation, got %v", err)
	}
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	users := newUserRepoMock()
	audit := &auditRepoMock{}
	service, _ := newTestAuthService(t, users, audit)

	_, _, err := service.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	entry := audit.lastAction(t)
	if entry.Action != domain.AuditLoginFail {
		t.Fatalf("expected LOGIN_FAIL audit entry, got %s", entry.Action)
	}
	if entry.ActorID != nil {
		t.Fatalf("expected nil actor for unknown email, got %v", *entry.ActorID)
	}
	if entry.Detail["reason"] != "unknown email" {
		t.Fatalf("unexpected failure reason: %v", entry.Detail)
	}
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	existing := domain.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleUser}
	users := newUserRepoMock(existing)
	audit := &auditRepoMock{}
	service, _ := newTestAuthService(t, users, audit)

	_, _, err = service.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	entry := audit.lastAction(t)
	if entry.Action != domain.AuditLoginFail {
		t.Fatalf("expected LOGIN_FAIL audit entry, got %s", entry.Action)
	}
	if entry.ActorID == nil || *entry.ActorID != "user-1" {
		t.Fatalf("expected audit actor user-1 for wrong password")
	}
	if entry.Detail["reason"] != "invalid password" {
		t.Fatalf("unexpected failure reason: %v", entry.Detail)
	}
}

func TestAuthServiceLoginFailuresShareOneError(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := newUserRepoMock(domain.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleUser})
	service, _ := newTestAuthService(t, users, &auditRepoMock{})

	_, _, unknownErr := service.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "x1234567"})
	_, _, wrongErr := service.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "x1234567"})

	if unknownErr == nil || wrongErr == nil {
		t.Fatalf("expected both login attempts to fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("expected identical error messages, got %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthServiceLoginSuccessRecordsIP(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	existing := domain.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleAdmin}
	users := newUserRepoMock(existing)
	audit := &auditRepoMock{}
	service, codec := newTestAuthService(t, users, audit)

	user, token, err := service.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "correct-password",
		IP:       "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if user.PasswordHash != "" {
		t.Fatalf("expected password hash to be stripped from the returned user")
	}

	subject, err := codec.Verify(token)
	if err != nil || subject != "user-1" {
		t.Fatalf("expected valid token for user-1, got subject %q err %v", subject, err)
	}

	entry := audit.lastAction(t)
	if entry.Action != domain.AuditLoginSuccess {
		t.Fatalf("expected LOGIN_SUCCESS audit entry, got %s", entry.Action)
	}
	if entry.Detail["ip"] != "203.0.113.7" {
		t.Fatalf("expected client IP in audit detail, got %v", entry.Detail)
	}
}

func TestAuthServiceSucceedsWhenAuditStoreFails(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	users := newUserRepoMock(domain.User{ID: "user-1", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleUser})
	audit := &auditRepoMock{appendErr: errors.New("audit store down")}
	service, _ := newTestAuthService(t, users, audit)

	if _, _, err := service.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "correct-password",
	}); err != nil {
		t.Fatalf("expected login to succeed despite audit failure, got %v", err)
	}

	if _, _, err := service.Register(context.Background(), RegisterInput{
		Email:    "bob@example.com",
		Password: "password123",
	}); err != nil {
		t.Fatalf("expected registration to succeed despite audit failure, got %v", err)
	}
}
