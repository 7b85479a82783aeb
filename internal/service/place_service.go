package service

import (
	"context"
	"strings"

	"campusmap/internal/authz"
	"campusmap/internal/cache"
	"campusmap/internal/models"
	"campusmap/internal/repository"
	"campusmap/internal/validation"
)

// DefaultListLimit is the page size handlers use for the public listing.
const DefaultListLimit = 50

// CreatePlaceInput carries the client-supplied fields for a new place.
type CreatePlaceInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	MediaURL    string  `json:"media_url"`
	Longitude   float64 `json:"lng"`
	Latitude    float64 `json:"lat"`
}

// UpdatePlaceInput carries the mutable fields of a place. Coordinates and
// ownership are fixed at creation; a pin that moves is a different pin.
type UpdatePlaceInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	MediaURL    *string `json:"media_url"`
}

// PlaceService handles place lifecycle and the ownership rules around it.
type PlaceService interface {
	Create(ctx context.Context, requester *models.Identity, input CreatePlaceInput) (*models.Place, error)
	GetByID(ctx context.Context, id uint) (*models.Place, error)
	List(ctx context.Context, category string, limit, offset int) ([]models.Place, error)
	Update(ctx context.Context, requester *models.Identity, id uint, input UpdatePlaceInput) (*models.Place, error)
	Delete(ctx context.Context, requester *models.Identity, id uint) error
}

type placeService struct {
	places          repository.PlaceRepository
	anonymousPlaces bool
}

// NewPlaceService creates a PlaceService. anonymousPlaces controls whether
// unauthenticated clients may create ownerless pins.
func NewPlaceService(places repository.PlaceRepository, anonymousPlaces bool) PlaceService {
	return &placeService{places: places, anonymousPlaces: anonymousPlaces}
}

func (s *placeService) Create(ctx context.Context, requester *models.Identity, input CreatePlaceInput) (*models.Place, error) {
	if requester == nil && !s.anonymousPlaces {
		return nil, models.NewUnauthenticatedError()
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if len(input.Name) > 120 {
		return nil, models.NewValidationError("Name must not exceed 120 characters")
	}
	if err := validation.ValidateCoordinates(input.Longitude, input.Latitude); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = models.CategoryOther
	}

	place := &models.Place{
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		MediaURL:    strings.TrimSpace(input.MediaURL),
		Longitude:   input.Longitude,
		Latitude:    input.Latitude,
	}
	if requester != nil {
		ownerID := requester.UserID
		place.OwnerID = &ownerID
	}

	if err := s.places.Create(ctx, place); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *placeService) GetByID(ctx context.Context, id uint) (*models.Place, error) {
	return s.places.GetByID(ctx, id)
}

func (s *placeService) List(ctx context.Context, category string, limit, offset int) ([]models.Place, error) {
	// Only the default first page of each listing is hot enough to cache;
	// the key does not encode limit or offset.
	if offset == 0 && limit == DefaultListLimit {
		var places []models.Place
		err := cache.Aside(ctx, cache.PlacesListKey(category), &places, cache.ListTTL, func() error {
			fetched, err := s.places.List(ctx, category, limit, offset)
			if err != nil {
				return err
			}
			places = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return places, nil
	}
	return s.places.List(ctx, category, limit, offset)
}

// Update edits the mutable fields of a place. The ownership check rides on
// the UPDATE statement, so zero affected rows means the place is gone or
// belongs to someone else; the follow-up read tells the two apart.
func (s *placeService) Update(ctx context.Context, requester *models.Identity, id uint, input UpdatePlaceInput) (*models.Place, error) {
	if requester == nil {
		return nil, models.NewUnauthenticatedError()
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, models.NewValidationError("Name must not be empty")
		}
		if len(name) > 120 {
			return nil, models.NewValidationError("Name must not exceed 120 characters")
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, models.NewValidationError("Category must not be empty")
		}
		fields["category"] = category
	}
	if input.MediaURL != nil {
		fields["media_url"] = strings.TrimSpace(*input.MediaURL)
	}
	if len(fields) == 0 {
		return nil, models.NewValidationError("No fields to update")
	}

	rows, err := s.places.UpdateOwned(ctx, id, fields, requester.UserID, requester.IsAdmin)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if err := s.denyReason(ctx, requester, id); err != nil {
			return nil, err
		}
		// Authorized but gone between UPDATE and read: report not found.
		return nil, models.NewNotFoundError("Place", id)
	}

	return s.places.GetByID(ctx, id)
}

// Delete removes a place and its comments under the same ownership rule as
// Update. Deleting an already-deleted place reports not found rather than
// succeeding silently.
func (s *placeService) Delete(ctx context.Context, requester *models.Identity, id uint) error {
	if requester == nil {
		return models.NewUnauthenticatedError()
	}

	rows, err := s.places.DeleteOwned(ctx, id, requester.UserID, requester.IsAdmin)
	if err != nil {
		return err
	}
	if rows == 0 {
		if err := s.denyReason(ctx, requester, id); err != nil {
			return err
		}
		return models.NewNotFoundError("Place", id)
	}
	return nil
}

// denyReason explains a zero-row mutation: not found if the place is absent,
// forbidden if it exists but the requester may not touch it, nil otherwise.
func (s *placeService) denyReason(ctx context.Context, requester *models.Identity, id uint) error {
	place, err := s.places.GetByID(ctx, id)
	if err != nil {
		return err
	}
	requesterID := requester.UserID
	if !authz.CanMutate(&requesterID, requester.IsAdmin, place.OwnerID) {
		return models.NewForbiddenError()
	}
	return nil
}
