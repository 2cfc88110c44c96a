package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreIssueAndResolve(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	token := store.Issue(42)
	require.NotEmpty(t, token)

	userID, ok := store.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, uint(42), userID)
}

func TestTokenStoreResolveUnknownToken(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	_, ok := store.Resolve("not-a-token")
	assert.False(t, ok)
}

func TestTokenStoreReissueInvalidatesPreviousToken(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	first := store.Issue(7)
	second := store.Issue(7)
	require.NotEqual(t, first, second)

	_, ok := store.Resolve(first)
	assert.False(t, ok, "old token must stop resolving once a new one is issued")

	userID, ok := store.Resolve(second)
	assert.True(t, ok)
	assert.Equal(t, uint(7), userID)
}

func TestTokenStoreTokensAreUnique(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	seen := make(map[string]bool)
	for i := uint(1); i <= 100; i++ {
		token := store.Issue(i)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestTokenStoreRevoke(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	token := store.Issue(5)
	store.Revoke(5)

	_, ok := store.Resolve(token)
	assert.False(t, ok)

	// Revoking again is a no-op.
	store.Revoke(5)
	assert.Equal(t, 0, store.Active())
}

func TestTokenStoreActive(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	store.Issue(1)
	store.Issue(2)
	store.Issue(2)
	assert.Equal(t, 2, store.Active())

	store.Revoke(1)
	assert.Equal(t, 1, store.Active())
}

func TestTokenStoreConcurrentIssueNoCrossAssignment(t *testing.T) {
	t.Parallel()
	store := NewTokenStore()

	const users = 50
	tokens := make([]string, users)
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i] = store.Issue(uint(i + 1))
		}(i)
	}
	wg.Wait()

	for i, token := range tokens {
		userID, ok := store.Resolve(token)
		require.True(t, ok)
		assert.Equal(t, uint(i+1), userID, "token must resolve to the user it was issued to")
	}
}

func TestAuthorizeMutation(t *testing.T) {
	t.Parallel()

	assert.NoError(t, AuthorizeMutation(3, 3))

	err := AuthorizeMutation(3, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "your own")
}
