// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"campusmap/internal/cache"
	"campusmap/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateAvatar(ctx context.Context, userID uint, avatar string) error
	SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID reads through the cache. Cached payloads are the user's JSON
// projection, which drops the credential columns, so a cache hit carries no
// password hash or reset token. Results must never feed a full-row save;
// writes go through column-scoped methods like UpdateAvatar.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getByField(ctx, "email", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getByField(ctx, "username", username)
}

// GetByIdentifier looks up a login identifier against email first, then
// username. First match wins; a value colliding across both fields is a
// data-integrity problem handled elsewhere.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	user, err := r.GetByEmail(ctx, identifier)
	if err != nil || user != nil {
		return user, err
	}
	return r.GetByUsername(ctx, identifier)
}

// getByField returns (nil, nil) when no row matches.
func (r *userRepository) getByField(ctx context.Context, field, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(field+" = ?", value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateAvatar writes the avatar column only, never the full row, so a user
// loaded through the cache cannot clobber credential columns.
func (r *userRepository) UpdateAvatar(ctx context.Context, userID uint, avatar string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("avatar", avatar)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// SetResetToken installs a pending password reset, overwriting any prior
// token so at most one is active per user.
func (r *userRepository) SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_token":   token,
			"reset_expires": expires,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	cache.InvalidateUser(ctx, userID)
	return nil
}

// ConsumeResetToken atomically sets the new password hash and clears the
// pending token, but only while the token matches exactly and is unexpired.
// The single conditional UPDATE makes the token single-use: a second call
// with the same token affects zero rows.
func (r *userRepository) ConsumeResetToken(ctx context.Context, token, newHash string, now time.Time) (bool, error) {
	var userID uint
	var rows int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The id is only needed to evict the cache entry afterwards; the
		// conditional UPDATE below stays the single-use gate.
		var user models.User
		if err := tx.Select("id").
			Where("reset_token = ? AND reset_expires > ?", token, now).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		userID = user.ID

		res := tx.Model(&models.User{}).
			Where("reset_token = ? AND reset_expires > ?", token, now).
			Updates(map[string]any{
				"password":      newHash,
				"reset_token":   nil,
				"reset_expires": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		rows = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}

	if rows > 0 {
		cache.InvalidateUser(ctx, userID)
	}
	return rows > 0, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
