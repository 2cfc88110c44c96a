package auth

import "agora/internal/models"

// AuthorizeMutation decides whether the caller may mutate a resource owned
// by ownerID. Pure comparison, no side effects. Every update/delete path
// must call this before touching storage so denied requests leave stored
// state unchanged.
func AuthorizeMutation(callerID, ownerID uint) error {
	if callerID != ownerID {
		return models.NewForbiddenError("You can only modify your own resources")
	}
	return nil
}
