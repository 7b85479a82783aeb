package server

import (
	"campusmap/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	identity := s.currentIdentity(c)

	user, err := s.userService.GetByID(c.Context(), identity.UserID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(user)
}

// UpdateMyAvatar handles PUT /api/users/me/avatar. The session payload is
// refreshed so the new avatar shows up on auth checks immediately.
func (s *Server) UpdateMyAvatar(c *fiber.Ctx) error {
	identity := s.currentIdentity(c)

	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateAvatar(c.Context(), identity.UserID, req.Avatar)
	if err != nil {
		return respondErr(c, err)
	}

	if token := c.Cookies(sessionCookie); token != "" {
		if err := s.sessions.Refresh(c.Context(), token, models.IdentityOf(user)); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}

	return c.JSON(user)
}
