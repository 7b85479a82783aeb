package repository

import (
	"context"
	"errors"
	"time"

	"campusmap/internal/cache"
	"campusmap/internal/models"

	"gorm.io/gorm"
)

// commentsCountSelect annotates place rows with their comment count without a
// second query per row.
const commentsCountSelect = "places.*, (SELECT COUNT(*) FROM comments WHERE comments.place_id = places.id) AS comments_count"

// PlaceRepository defines persistence operations for places.
//
// UpdateOwned and DeleteOwned carry the ownership check into the statement
// itself and report rows affected, so a concurrent delete or ownership
// mismatch surfaces as zero rows instead of acting on stale data.
type PlaceRepository interface {
	Create(ctx context.Context, place *models.Place) error
	GetByID(ctx context.Context, id uint) (*models.Place, error)
	List(ctx context.Context, category string, limit, offset int) ([]models.Place, error)
	UpdateOwned(ctx context.Context, id uint, fields map[string]any, requesterID uint, isAdmin bool) (int64, error)
	DeleteOwned(ctx context.Context, id uint, requesterID uint, isAdmin bool) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type placeRepository struct {
	db *gorm.DB
}

// NewPlaceRepository returns a new PlaceRepository implementation.
func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) Create(ctx context.Context, place *models.Place) error {
	if err := r.db.WithContext(ctx).Create(place).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePlacesList(ctx)
	return nil
}

func (r *placeRepository) GetByID(ctx context.Context, id uint) (*models.Place, error) {
	var place models.Place
	key := cache.PlaceKey(id)

	err := cache.Aside(ctx, key, &place, cache.PlaceTTL, func() error {
		err := r.db.WithContext(ctx).
			Select(commentsCountSelect).
			Preload("Owner").
			First(&place, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Place", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) List(ctx context.Context, category string, limit, offset int) ([]models.Place, error) {
	var places []models.Place

	q := r.db.WithContext(ctx).
		Select(commentsCountSelect).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	if err := q.Find(&places).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return places, nil
}

// UpdateOwned applies fields to the place only if the requester owns it or is
// an admin. Geometry and ownership columns are never part of fields; callers
// whitelist what may change.
func (r *placeRepository) UpdateOwned(ctx context.Context, id uint, fields map[string]any, requesterID uint, isAdmin bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Place{}).Where("id = ?", id)
	if !isAdmin {
		q = q.Where("owner_id = ?", requesterID)
	}

	res := q.Updates(fields)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePlace(ctx, id)
		cache.InvalidatePlacesList(ctx)
	}
	return res.RowsAffected, nil
}

// DeleteOwned removes the place and its comments in one transaction, guarded
// by the same ownership condition as UpdateOwned.
func (r *placeRepository) DeleteOwned(ctx context.Context, id uint, requesterID uint, isAdmin bool) (int64, error) {
	var rows int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("id = ?", id)
		if !isAdmin {
			q = q.Where("owner_id = ?", requesterID)
		}

		res := q.Delete(&models.Place{})
		if res.Error != nil {
			return res.Error
		}
		rows = res.RowsAffected
		if rows == 0 {
			return nil
		}

		return tx.Where("place_id = ?", id).Delete(&models.Comment{}).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	if rows > 0 {
		cache.InvalidatePlace(ctx, id)
		cache.InvalidatePlacesList(ctx)
	}
	return rows, nil
}

// DeleteOlderThan purges places created before cutoff, comments first so no
// orphans survive, and returns the number of places removed. Stale IDs are
// collected up front so each swept place's cache entry can be evicted; a
// swept pin must stop serving immediately, not after the cache TTL.
func (r *placeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var staleIDs []uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Place{}).
			Where("created_at < ?", cutoff).
			Pluck("id", &staleIDs).Error; err != nil {
			return err
		}
		if len(staleIDs) == 0 {
			return nil
		}

		if err := tx.Where("place_id IN ?", staleIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", staleIDs).Delete(&models.Place{}).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	if len(staleIDs) > 0 {
		for _, id := range staleIDs {
			cache.InvalidatePlace(ctx, id)
		}
		cache.InvalidatePlacesList(ctx)
	}
	return int64(len(staleIDs)), nil
}
