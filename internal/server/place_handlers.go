package server

import (
	"campusmap/internal/models"
	"campusmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPlaces handles GET /api/places with optional category filter and
// limit/offset pagination.
func (s *Server) GetPlaces(c *fiber.Ctx) error {
	p := parsePagination(c, service.DefaultListLimit)
	category := c.Query("category")

	places, err := s.placeService.List(c.Context(), category, p.Limit, p.Offset)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"places": places,
		"limit":  p.Limit,
		"offset": p.Offset,
	})
}

// GetPlace handles GET /api/places/:id
func (s *Server) GetPlace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	place, err := s.placeService.GetByID(c.Context(), id)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(place)
}

// CreatePlace handles POST /api/places. Anonymous creation is allowed only
// when the deployment enables it; the resulting pin then has no owner.
func (s *Server) CreatePlace(c *fiber.Ctx) error {
	var input service.CreatePlaceInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	place, err := s.placeService.Create(c.Context(), s.currentIdentity(c), input)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(place)
}

// UpdatePlace handles PUT /api/places/:id. Only the owner or an admin may
// edit, and coordinates are not editable.
func (s *Server) UpdatePlace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdatePlaceInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	place, err := s.placeService.Update(c.Context(), s.currentIdentity(c), id, input)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(place)
}

// DeletePlace handles DELETE /api/places/:id
func (s *Server) DeletePlace(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.placeService.Delete(c.Context(), s.currentIdentity(c), id); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Place deleted",
	})
}
