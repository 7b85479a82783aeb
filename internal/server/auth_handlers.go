package server

import (
	"errors"

	"campusmap/internal/middleware"
	"campusmap/internal/models"
	"campusmap/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}

	user, err := s.authService.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondErr(c, err)
	}

	token, err := s.sessions.Create(c.Context(), models.IdentityOf(user))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	middleware.SessionsCreated.Inc()
	s.setSessionCookie(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user": user,
	})
}

// Login handles POST /api/auth/login. The identifier may be an email address
// or a username.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Verify(c.Context(), req.Identifier, req.Password)
	if err != nil {
		// Unknown user and wrong password produce the same response.
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrWrongPassword) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError())
		}
		return respondErr(c, err)
	}

	token, err := s.sessions.Create(c.Context(), models.IdentityOf(user))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	middleware.SessionsCreated.Inc()
	s.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"user": user,
	})
}

// Logout handles POST /api/auth/logout. Logging out without a session still
// succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	token := c.Cookies(sessionCookie)
	if token != "" {
		if err := s.sessions.Destroy(c.Context(), token); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}
	s.setSessionCookie(c, "")

	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// CheckAuth handles GET /api/auth/check. It reports whether the request
// carries a live session and, if so, whose.
func (s *Server) CheckAuth(c *fiber.Ctx) error {
	identity, err := s.resolveIdentity(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	if identity == nil {
		return c.JSON(fiber.Map{
			"authenticated": false,
		})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"user":          identity,
	})
}

// RequestPasswordReset handles POST /api/auth/password-reset/request. The
// response is identical whether or not the email matches an account.
func (s *Server) RequestPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is required"))
	}

	token, err := s.authService.RequestPasswordReset(c.Context(), req.Email)
	if err != nil {
		return respondErr(c, err)
	}

	if token != "" {
		// Token delivery is out of band; it never appears in the response.
		middleware.Logger.InfoContext(c.UserContext(), "password reset requested")
	}

	return c.JSON(fiber.Map{
		"message": "If that email is registered, a reset link has been sent",
	})
}

// ConfirmPasswordReset handles POST /api/auth/password-reset/confirm.
func (s *Server) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.authService.ConfirmPasswordReset(c.Context(), req.Token, req.Password); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated",
	})
}
