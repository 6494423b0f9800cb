package ports

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// AuthAPI is the remote authentication contract the session relies on.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Envelope[domain.AuthPayload], error)
	Register(ctx context.Context, reg domain.Registration) (*domain.Envelope[domain.AuthPayload], error)
	Me(ctx context.Context) (*domain.Envelope[domain.UserPayload], error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Envelope[domain.UserPayload], error)
}
