// Package service implements the business logic layer.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"campusmap/internal/models"
	"campusmap/internal/repository"
	"campusmap/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Credential verification outcomes. Callers must present both identically to
// clients so a login failure does not reveal which part was wrong.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// AuthService handles registration, credential verification and password
// resets.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Verify(ctx context.Context, identifier, password string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users    repository.UserRepository
	resetTTL time.Duration
}

// NewAuthService creates an AuthService backed by the given repository.
func NewAuthService(users repository.UserRepository, resetTTL time.Duration) AuthService {
	return &authService{users: users, resetTTL: resetTTL}
}

func (s *authService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Verify checks a login identifier (email or username) and password against
// the stored hash.
func (s *authService) Verify(ctx context.Context, identifier, password string) (*models.User, error) {
	user, err := s.users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	return user, nil
}

// RequestPasswordReset installs a reset token for the account and returns it
// for out-of-band delivery. When no account matches the email it returns an
// empty token and no error, so the endpoint responds identically either way.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}

	token, err := newResetToken()
	if err != nil {
		return "", models.NewInternalError(err)
	}

	expires := time.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ConfirmPasswordReset sets a new password in exchange for a valid token. The
// token is consumed on success; expired, unknown and already-used tokens all
// fail the same way.
func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return models.NewTokenInvalidError()
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	ok, err := s.users.ConsumeResetToken(ctx, token, string(hash), time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return models.NewTokenInvalidError()
	}
	return nil
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
