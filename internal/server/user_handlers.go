package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	// Taken nicknames are reported as a conflict, not a validation failure.
	existing, err := s.userService.GetByNickname(ctx, req.Nickname)
	if err != nil {
		return mapServiceError(c, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Nickname is already taken"))
	}

	user, err := s.userService.Register(ctx, service.RegisterInput{
		Nickname: req.Nickname,
		Password: req.Password,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	users, err := s.userService.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(users)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetByID(ctx, id)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserComments handles GET /api/users/:id/comments
func (s *Server) GetUserComments(c *fiber.Ctx) error {
	ctx := c.Context()
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByAuthor(ctx, userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(comments)
}
