// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"campusmap/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls seeding volume and behavior.
type Options struct {
	Users            int
	Places           int
	CommentsPerPlace int
	// SkipBcrypt uses a plaintext password for faster local seeding.
	SkipBcrypt bool
	// MaxAge spreads place creation times into the past, so a following
	// retention sweep exercises realistic data.
	MaxAge time.Duration
}

// DefaultOptions returns a small but lively campus map.
func DefaultOptions() Options {
	return Options{
		Users:            10,
		Places:           40,
		CommentsPerPlace: 3,
		MaxAge:           20 * time.Hour,
	}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		opts: opts,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", uuid.NewString()),
	}

	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePlace persists a place pinned somewhere on a plausible campus grid,
// owned by the given user (or ownerless when user is nil).
func (f *Factory) CreatePlace(user *models.User, overrides ...func(*models.Place)) (*models.Place, error) {
	categories := []string{
		models.CategoryFood,
		models.CategoryStudy,
		models.CategoryTransport,
		models.CategorySocial,
		models.CategoryDiscount,
		models.CategoryOther,
	}

	place := &models.Place{
		Name:        gofakeit.Company(),
		Description: gofakeit.Sentence(12),
		Category:    categories[f.rnd.Intn(len(categories))],
		MediaURL:    fmt.Sprintf("https://picsum.photos/seed/%s/800/600", uuid.NewString()),
		// A loose box around a city campus; close enough for demo pins.
		Longitude: 29.0 + f.rnd.Float64()*0.1,
		Latitude:  41.0 + f.rnd.Float64()*0.1,
	}
	if user != nil {
		ownerID := user.ID
		place.OwnerID = &ownerID
	}

	if f.opts.MaxAge > 0 {
		place.CreatedAt = time.Now().Add(-time.Duration(f.rnd.Int63n(int64(f.opts.MaxAge))))
	}

	for _, override := range overrides {
		override(place)
	}

	if err := f.db.Create(place).Error; err != nil {
		return nil, err
	}
	return place, nil
}

// CreateComment persists a comment by user on place.
func (f *Factory) CreateComment(user *models.User, place *models.Place, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Content: gofakeit.Sentence(8),
		PlaceID: place.ID,
		UserID:  user.ID,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run seeds the database per the factory options: an admin account, a pool
// of users, places spread across categories, and comments on each place.
func (f *Factory) Run() error {
	admin, err := f.CreateUser(func(u *models.User) {
		u.Username = "admin"
		u.Email = "admin@campusmap.local"
		u.IsAdmin = true
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Printf("seeded admin user %q (id=%d)", admin.Username, admin.ID)

	users := make([]*models.User, 0, f.opts.Users)
	for i := 0; i < f.opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, user)
	}

	for i := 0; i < f.opts.Places; i++ {
		// Roughly one pin in ten is anonymous.
		var owner *models.User
		if f.rnd.Intn(10) != 0 {
			owner = users[f.rnd.Intn(len(users))]
		}

		place, err := f.CreatePlace(owner)
		if err != nil {
			return fmt.Errorf("seed place: %w", err)
		}

		for j := 0; j < f.opts.CommentsPerPlace; j++ {
			commenter := users[f.rnd.Intn(len(users))]
			if _, err := f.CreateComment(commenter, place); err != nil {
				return fmt.Errorf("seed comment: %w", err)
			}
		}
	}

	log.Printf("seeded %d users, %d places, ~%d comments",
		f.opts.Users+1, f.opts.Places, f.opts.Places*f.opts.CommentsPerPlace)
	return nil
}
