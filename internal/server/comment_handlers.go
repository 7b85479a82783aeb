package server

import (
	"campusmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/places/:id/comments. Comments are returned
// oldest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	placeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByPlace(c.Context(), placeID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"comments": comments,
	})
}

// CreateComment handles POST /api/places/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	placeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.Create(c.Context(), s.currentIdentity(c), placeID, req.Content)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}
