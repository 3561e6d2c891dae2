package service

import (
	"context"
	"errors"

	"catframe/internal/models"
	"catframe/internal/repository"
)

type UserService struct {
	users repository.UserRepo
}

func NewUserService(users repository.UserRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	skip, limit = normalizePage(skip, limit)
	return s.users.List(ctx, skip, limit)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// ToggleAdmin flips the admin flag of user id. Admins cannot demote themselves.
func (s *UserService) ToggleAdmin(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	if actor != nil && actor.ID == id {
		return nil, ErrSelfAdminToggle
	}
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = !u.IsAdmin
	if err := s.users.Save(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// DeleteUser removes an account together with its comments.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, id int64) error {
	if actor != nil && actor.ID == id {
		return ErrSelfDelete
	}
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
