package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/users/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		ID       uint   `json:"id"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ID == 0 || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("ID and password are required"))
	}

	token, err := s.sessionService.Login(c.Context(), req.ID, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// Logout handles POST /api/users/logout. Requires a valid session.
func (s *Server) Logout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	s.sessionService.Logout(userID)

	return c.SendStatus(fiber.StatusNoContent)
}
