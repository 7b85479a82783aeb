// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Categories used by the map UI. The category column is an open string set;
// these are the values the bundled front-end knows icons for.
const (
	CategoryFood      = "food"
	CategoryStudy     = "study"
	CategoryTransport = "transport"
	CategorySocial    = "social"
	CategoryDiscount  = "discount"
	CategoryOther     = "other"
)

// Place represents a geotagged point of interest pinned on the campus map.
// Longitude and Latitude are stored exactly as submitted (lng,lat order);
// geometry and owner are immutable after creation.
type Place struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"`
	MediaURL    string `json:"media_url"`
	Longitude   float64 `gorm:"not null" json:"lng"`
	Latitude    float64 `gorm:"not null" json:"lat"`
	// OwnerID is nil for anonymous submissions (when the deployment allows
	// them). Mutation rights require ownership or the admin flag.
	OwnerID *uint `gorm:"index" json:"owner_id,omitempty"`
	Owner   *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int       `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
