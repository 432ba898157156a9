package session

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/fretless/tabstash/internal/models"
	"github.com/fretless/tabstash/internal/services"
)

// Authorizer resolves the admin capability for a user id.
//
// The role is fetched on demand and never cached beyond a single check; the
// store remains the source of truth for role changes.
type Authorizer struct {
	store  services.TabStore
	logger *log.Logger
}

// NewAuthorizer creates an Authorizer backed by the given store.
func NewAuthorizer(store services.TabStore, logger *log.Logger) *Authorizer {
	return &Authorizer{store: store, logger: logger}
}

// IsAdmin reports whether userID carries the admin role. Fails open to false:
// a lookup error is logged for observability but never grants admin and never
// blocks the rest of the cascade.
func (a *Authorizer) IsAdmin(ctx context.Context, userID string) bool {
	if a.store == nil || userID == "" {
		return false
	}

	role, err := a.store.QueryRole(ctx, userID)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("role lookup failed", "user_id", userID, "err", err)
		}
		return false
	}

	return models.Profile{ID: userID, Role: role}.IsAdmin()
}
