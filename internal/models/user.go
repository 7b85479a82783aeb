// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered student account.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Avatar   string `json:"avatar"`
	IsAdmin  bool   `gorm:"not null;default:false" json:"is_admin"`
	// ResetToken and ResetExpires are set and cleared together; a pending
	// password reset exists iff both are non-nil.
	ResetToken   *string    `gorm:"index" json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Places       []Place    `gorm:"foreignKey:OwnerID" json:"places,omitempty"`
}

// Identity is the session-relevant projection of a User returned by login
// and session probes. The password hash and reset fields never leave the
// models package boundary.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Avatar   string `json:"avatar"`
}

// IdentityOf builds the session projection for a user.
func IdentityOf(u *User) Identity {
	return Identity{
		UserID:   u.ID,
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
		Avatar:   u.Avatar,
	}
}
