// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment represents a comment left on a place. Comments are never edited or
// individually deleted; they disappear with their place (FK cascade, and the
// repository deletes both record sets in one transaction for stores without
// FK enforcement).
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	PlaceID   uint      `gorm:"not null;index" json:"place_id"`
	Place     *Place    `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
