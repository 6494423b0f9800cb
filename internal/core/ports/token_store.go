package ports

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// TokenStore persists the bearer token and the last-known user profile.
type TokenStore interface {
	Token(ctx context.Context) (string, bool)
	SetToken(ctx context.Context, token string) error
	// User returns the cached profile. Missing or malformed data reads as absent.
	User(ctx context.Context) (*domain.UserProfile, bool)
	SetUser(ctx context.Context, user *domain.UserProfile) error
	// Clear removes the token and the cached profile together.
	Clear(ctx context.Context) error
}
