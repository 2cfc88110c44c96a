// Package auth owns session token lifecycle and mutation authorization.
package auth

import (
	"sync"

	"github.com/google/uuid"
)

// TokenStore is the process-wide mapping between users and their active
// session tokens. Each user has at most one active token at any instant;
// issuing a new one atomically invalidates the previous one. The store is
// safe for concurrent use.
//
// The store is owned by the server composition root and injected where
// needed; it is not a package-level global.
type TokenStore struct {
	mu      sync.RWMutex
	byUser  map[uint]string
	byToken map[string]uint
}

// NewTokenStore returns an empty TokenStore.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		byUser:  make(map[uint]string),
		byToken: make(map[string]uint),
	}
}

// Issue generates a new opaque token for the user and installs it as the
// user's only active token. Any previously issued token for the same user
// becomes unresolvable before Issue returns.
func (s *TokenStore) Issue(userID uint) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[userID]; ok {
		delete(s.byToken, old)
	}
	s.byUser[userID] = token
	s.byToken[token] = userID

	return token
}

// Resolve returns the user owning the token, reflecting the latest Issue or
// Revoke for that user.
func (s *TokenStore) Resolve(token string) (uint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byToken[token]
	return userID, ok
}

// Active returns the number of users with a live token.
func (s *TokenStore) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byUser)
}

// Revoke removes the user's active token if any. Idempotent.
func (s *TokenStore) Revoke(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.byUser[userID]; ok {
		delete(s.byToken, token)
		delete(s.byUser, userID)
	}
}
