package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"skybook/internal/auth/token"
	usererrors "skybook/internal/users/errors"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/logger"
	"skybook/pkg/model"
)

type mockUserRepository struct {
	usersByID    map[string]*model.User
	usersByEmail map[string]*model.User

	createFunc func(ctx context.Context, user *model.User) error
}

func newMockUserRepository(users ...*model.User) *mockUserRepository {
	m := &mockUserRepository{
		usersByID:    map[string]*model.User{},
		usersByEmail: map[string]*model.User{},
	}
	for _, u := range users {
		m.usersByID[u.ID] = u
		m.usersByEmail[u.Email] = u
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	if _, exists := m.usersByEmail[user.Email]; exists {
		return usererrors.ErrEmailTaken
	}
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, usererrors.ErrNotFound
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.usersByID {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) SetBlocked(ctx context.Context, id string, blocked bool) error {
	user, ok := m.usersByID[id]
	if !ok {
		return usererrors.ErrNotFound
	}
	user.Blocked = blocked
	return nil
}

func (m *mockUserRepository) SetRole(ctx context.Context, id string, role model.UserRole) error {
	user, ok := m.usersByID[id]
	if !ok {
		return usererrors.ErrNotFound
	}
	user.Role = role
	return nil
}

func newTestAuth(repo *mockUserRepository) AuthService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	tokens := token.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	return NewAuthService(repo, tokens, &config.Config{Log: log})
}

func existingUser(t *testing.T, password string, blocked bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return &model.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		Name:         "Alice",
		Role:         model.RoleUser,
		PasswordHash: string(hash),
		Blocked:      blocked,
	}
}

func TestRegister_IssuesToken(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestAuth(repo)

	resp, err := svc.Register(context.Background(), &model.UserCreate{
		Email:    "Bob@Example.com",
		Password: "secret-password",
		Name:     "Bob",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.AccessToken == "" {
		t.Error("expected an access token")
	}
	if resp.TokenType != "bearer" {
		t.Errorf("expected token type bearer, got %q", resp.TokenType)
	}
	if resp.Role != "user" {
		t.Errorf("expected default role user, got %q", resp.Role)
	}

	stored, ok := repo.usersByEmail["bob@example.com"]
	if !ok {
		t.Fatal("expected email to be stored lowercased")
	}
	if stored.PasswordHash == "secret-password" {
		t.Error("expected password to be hashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepository(existingUser(t, "pw-irrelevant", false))
	svc := newTestAuth(repo)

	_, err := svc.Register(context.Background(), &model.UserCreate{
		Email:    "alice@example.com",
		Password: "secret-password",
		Name:     "Alice Again",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	svc := newTestAuth(newMockUserRepository())

	_, err := svc.Register(context.Background(), &model.UserCreate{
		Email:    "eve@example.com",
		Password: "secret-password",
		Name:     "Eve",
		Role:     model.RoleAdmin,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	repo := newMockUserRepository(existingUser(t, "correct-horse", false))
	svc := newTestAuth(repo)

	resp, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", resp.UserID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newMockUserRepository(existingUser(t, "correct-horse", false))
	svc := newTestAuth(repo)

	_, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "alice@example.com",
		Password: "battery-staple",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newTestAuth(newMockUserRepository())

	_, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "ghost@example.com",
		Password: "whatever-password",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestLogin_BlockedAccount(t *testing.T) {
	repo := newMockUserRepository(existingUser(t, "correct-horse", true))
	svc := newTestAuth(repo)

	_, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestResolveToken_BlockedAfterIssue(t *testing.T) {
	user := existingUser(t, "correct-horse", false)
	repo := newMockUserRepository(user)
	svc := newTestAuth(repo)

	resp, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	user.Blocked = true

	_, err = svc.ResolveToken(context.Background(), resp.AccessToken)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Fatalf("expected 403 for blocked account, got %v", err)
	}
}

func TestVerifyToken_ReissuesFreshToken(t *testing.T) {
	repo := newMockUserRepository(existingUser(t, "correct-horse", false))
	svc := newTestAuth(repo)

	resp, err := svc.Login(context.Background(), &model.UserLogin{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verified, err := svc.VerifyToken(context.Background(), resp.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verified.AccessToken == "" || verified.UserID != "user-1" {
		t.Errorf("expected re-issued token for user-1, got %+v", verified)
	}
}

func TestVerifyToken_Invalid(t *testing.T) {
	svc := newTestAuth(newMockUserRepository())

	_, err := svc.VerifyToken(context.Background(), "bogus.token.value")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 401 {
		t.Fatalf("expected 401, got %v", err)
	}
}
