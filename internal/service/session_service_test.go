package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/auth"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// plaintextVerify compares stored and provided passwords directly so the
// tests do not pay for bcrypt.
func plaintextVerify(stored, password string) error {
	if stored != password {
		return errors.New("password mismatch")
	}
	return nil
}

func newSessionFixture() (*SessionService, *auth.TokenStore) {
	userRepo := newStubUserRepo(
		&models.User{ID: 1, Nickname: "alice", Password: "Sup3rSecret"},
	)
	tokens := auth.NewTokenStore()
	return NewSessionService(userRepo, tokens, plaintextVerify), tokens
}

func TestSessionServiceLogin(t *testing.T) {
	t.Parallel()
	svc, tokens := newSessionFixture()

	token, err := svc.Login(context.Background(), 1, "Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, ok := tokens.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, uint(1), userID)
}

func TestSessionServiceLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture()

	_, err := svc.Login(context.Background(), 1, "wrong")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))
}

func TestSessionServiceLoginUnknownUser(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture()

	// Unknown user and wrong password must be indistinguishable.
	_, err := svc.Login(context.Background(), 42, "Sup3rSecret")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestSessionServiceReLoginInvalidatesOldToken(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture()

	first, err := svc.Login(context.Background(), 1, "Sup3rSecret")
	require.NoError(t, err)

	second, err := svc.Login(context.Background(), 1, "Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.ResolveCaller(first)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))

	userID, err := svc.ResolveCaller(second)
	require.NoError(t, err)
	assert.Equal(t, uint(1), userID)
}

func TestSessionServiceLogout(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture()

	token, err := svc.Login(context.Background(), 1, "Sup3rSecret")
	require.NoError(t, err)

	svc.Logout(1)

	_, err = svc.ResolveCaller(token)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))

	// Logout of a user without a session is a no-op.
	svc.Logout(1)
}

func TestSessionServiceResolveCallerEmptyToken(t *testing.T) {
	t.Parallel()
	svc, _ := newSessionFixture()

	_, err := svc.ResolveCaller("")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))
}

func TestSessionServiceDefaultVerifyIsBcrypt(t *testing.T) {
	t.Parallel()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := newStubUserRepo(&models.User{
		ID:       1,
		Nickname: "alice",
		Password: string(hashed),
	})
	svc := NewSessionService(userRepo, auth.NewTokenStore(), nil)

	_, err = svc.Login(context.Background(), 1, "Sup3rSecret")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), 1, "definitely-wrong")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthenticated, appErrCode(err))
}
