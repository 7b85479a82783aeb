package service

import (
	"context"
	"strings"

	"campusmap/internal/models"
	"campusmap/internal/repository"
)

const maxCommentLength = 2000

// CommentService handles comments on places.
type CommentService interface {
	Create(ctx context.Context, requester *models.Identity, placeID uint, content string) (*models.Comment, error)
	ListByPlace(ctx context.Context, placeID uint) ([]models.Comment, error)
}

type commentService struct {
	comments repository.CommentRepository
	places   repository.PlaceRepository
}

// NewCommentService creates a CommentService.
func NewCommentService(comments repository.CommentRepository, places repository.PlaceRepository) CommentService {
	return &commentService{comments: comments, places: places}
}

// Create attaches a comment to an existing place. Commenting always requires
// a signed-in user, even on ownerless places.
func (s *commentService) Create(ctx context.Context, requester *models.Identity, placeID uint, content string) (*models.Comment, error) {
	if requester == nil {
		return nil, models.NewUnauthenticatedError()
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLength {
		return nil, models.NewValidationError("Content is too long")
	}

	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		PlaceID: placeID,
		UserID:  requester.UserID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListByPlace returns a place's comments oldest first.
func (s *commentService) ListByPlace(ctx context.Context, placeID uint) ([]models.Comment, error) {
	if _, err := s.places.GetByID(ctx, placeID); err != nil {
		return nil, err
	}
	return s.comments.ListByPlace(ctx, placeID)
}
