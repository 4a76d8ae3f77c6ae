package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"skybook/internal/auth/token"
	usererrors "skybook/internal/users/errors"
	"skybook/internal/users/repository"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/model"
)

type AuthService interface {
	Register(ctx context.Context, uc *model.UserCreate) (*model.TokenResponse, error)
	Login(ctx context.Context, lc *model.UserLogin) (*model.TokenResponse, error)
	VerifyToken(ctx context.Context, tokenString string) (*model.TokenResponse, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	ResolveToken(ctx context.Context, tokenString string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *token.Manager
	validate *validator.Validate
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, uc *model.UserCreate) (*model.TokenResponse, error) {
	if err := s.validate.Struct(uc); err != nil {
		return nil, apperrors.Validation("Invalid registration data", map[string]any{"errors": err.Error()})
	}

	role := uc.Role
	if role == "" {
		role = model.RoleUser
	}
	if role == model.RoleAdmin {
		// Admin accounts are provisioned out of band.
		return nil, apperrors.Forbidden("Cannot self-register as admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uc.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(uc.Email)),
		Name:         strings.TrimSpace(uc.Name),
		Role:         role,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, usererrors.ErrEmailTaken) {
			return nil, apperrors.Validation("Email is already registered", nil)
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID, "role", user.Role)
	return s.tokenResponse(user)
}

func (s *authService) Login(ctx context.Context, lc *model.UserLogin) (*model.TokenResponse, error) {
	if err := s.validate.Struct(lc); err != nil {
		return nil, apperrors.Validation("Invalid login data", map[string]any{"errors": err.Error()})
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(lc.Email)))
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(lc.Password)) != nil {
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if user.Blocked {
		return nil, apperrors.Forbidden("Account is blocked")
	}

	return s.tokenResponse(user)
}

// VerifyToken validates a token against the current account state and
// re-issues a fresh one. A token for a since-blocked account is rejected
// even when its signature is still valid.
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*model.TokenResponse, error) {
	user, err := s.ResolveToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return s.tokenResponse(user)
}

func (s *authService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Account no longer exists")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}
	return user, nil
}

func (s *authService) ResolveToken(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid or expired token")
	}

	user, err := s.CurrentUser(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, apperrors.Forbidden("Account is blocked")
	}
	return user, nil
}

func (s *authService) tokenResponse(user *model.User) (*model.TokenResponse, error) {
	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}
	return &model.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		UserID:      user.ID,
		Role:        string(user.Role),
	}, nil
}
