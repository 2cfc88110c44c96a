package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput holds the fields accepted when registering a user.
type RegisterInput struct {
	Nickname string
	Password string
}

// UserService implements user registration and lookups.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register validates the input, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validation.ValidateNickname(input.Nickname); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Nickname: input.Nickname,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByNickname returns the user with the given nickname, or nil when no
// such user exists.
func (s *UserService) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return s.userRepo.GetByNickname(ctx, nickname)
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}
