package service

import (
	"context"
	"errors"

	usererrors "skybook/internal/users/errors"
	"skybook/internal/users/repository"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/model"
)

// UserService covers the admin-facing directory operations. Registration
// and login live in the auth service.
type UserService interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetAll(ctx context.Context, limit int) ([]*model.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool, actorID string) error
	SetRole(ctx context.Context, id string, role model.UserRole) error
}

type userService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewUserService(repo repository.UserRepository, cfg *config.Config) UserService {
	return &userService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func (s *userService) GetAll(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}

	users, err := s.repo.FindAll(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("Failed to list users", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *userService) SetBlocked(ctx context.Context, id string, blocked bool, actorID string) error {
	if blocked && id == actorID {
		return apperrors.Validation("Cannot block your own account", nil)
	}

	if err := s.repo.SetBlocked(ctx, id, blocked); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		s.cfg.Log.Error("Failed to update block state", "user_id", id, "error", err)
		return apperrors.Internal("Failed to update user", err)
	}

	s.cfg.Log.Info("User block state changed", "user_id", id, "blocked", blocked, "actor_id", actorID)
	return nil
}

func (s *userService) SetRole(ctx context.Context, id string, role model.UserRole) error {
	if !role.Valid() {
		return apperrors.Validation("Role must be one of user, company, admin", nil)
	}

	if err := s.repo.SetRole(ctx, id, role); err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return apperrors.NotFoundWithID("User", id)
		}
		s.cfg.Log.Error("Failed to update role", "user_id", id, "error", err)
		return apperrors.Internal("Failed to update user", err)
	}

	s.cfg.Log.Info("User role changed", "user_id", id, "role", role)
	return nil
}
