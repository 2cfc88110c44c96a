package service

import (
	"context"
	"errors"

	"agora/internal/auth"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// VerifyFunc checks a plaintext password against a stored secret.
type VerifyFunc func(stored, password string) error

// SessionService orchestrates login, logout and caller resolution on top of
// the token store. A successful login always invalidates the user's previous
// token: one active session per user.
type SessionService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenStore
	verify   VerifyFunc
}

// NewSessionService creates a SessionService. A nil verify falls back to
// bcrypt comparison.
func NewSessionService(userRepo repository.UserRepository, tokens *auth.TokenStore, verify VerifyFunc) *SessionService {
	if verify == nil {
		verify = func(stored, password string) error {
			return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		}
	}
	return &SessionService{
		userRepo: userRepo,
		tokens:   tokens,
		verify:   verify,
	}
}

// Login verifies the credentials and issues a fresh token. An unknown user
// id and a wrong password are indistinguishable to the caller. The lookup
// bypasses the user cache: cached users carry no password hash.
func (s *SessionService) Login(ctx context.Context, userID uint, password string) (string, error) {
	user, err := s.userRepo.GetCredentials(ctx, userID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			middleware.AuthFailures.WithLabelValues("login").Inc()
			return "", models.NewUnauthenticatedError("Invalid credentials")
		}
		return "", err
	}

	if err := s.verify(user.Password, password); err != nil {
		middleware.AuthFailures.WithLabelValues("login").Inc()
		return "", models.NewUnauthenticatedError("Invalid credentials")
	}

	s.tokens.Revoke(user.ID)
	token := s.tokens.Issue(user.ID)
	middleware.SessionsActive.Set(float64(s.tokens.Active()))

	return token, nil
}

// Logout revokes the user's active token. Idempotent.
func (s *SessionService) Logout(userID uint) {
	s.tokens.Revoke(userID)
	middleware.SessionsActive.Set(float64(s.tokens.Active()))
}

// ResolveCaller maps a bearer token to the owning user id, translating
// absence into the UNAUTHENTICATED error consumed by the handler layer.
func (s *SessionService) ResolveCaller(token string) (uint, error) {
	if token == "" {
		return 0, models.NewUnauthenticatedError("Authorization required")
	}
	userID, ok := s.tokens.Resolve(token)
	if !ok {
		middleware.AuthFailures.WithLabelValues("token").Inc()
		return 0, models.NewUnauthenticatedError("Invalid or expired token")
	}
	return userID, nil
}
