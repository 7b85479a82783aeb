package service

import (
	"context"
	"net/url"
	"strings"

	"campusmap/internal/models"
	"campusmap/internal/repository"
)

// UserService handles profile operations.
type UserService interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID uint, avatar string) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateAvatar replaces the user's avatar URL. An empty value clears it.
func (s *userService) UpdateAvatar(ctx context.Context, userID uint, avatar string) (*models.User, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar != "" {
		u, err := url.Parse(avatar)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, models.NewValidationError("Avatar must be an http(s) URL")
		}
	}

	if err := s.users.UpdateAvatar(ctx, userID, avatar); err != nil {
		return nil, err
	}
	// The write evicted the cache entry, so this read is fresh.
	return s.users.GetByID(ctx, userID)
}
