package ports

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

// Navigator moves the user to another view. Implementations must not block.
type Navigator interface {
	ToLogin(ctx context.Context)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context)

func (f NavigatorFunc) ToLogin(ctx context.Context) { f(ctx) }

// SessionReader exposes the current session to views and the access gate.
type SessionReader interface {
	Snapshot() domain.Session
}

// SessionService is the full session surface consumed by views.
type SessionService interface {
	SessionReader
	Start(ctx context.Context)
	Login(ctx context.Context, creds domain.Credentials) domain.Result
	Register(ctx context.Context, reg domain.Registration) domain.Result
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) domain.Result
	HasRole(roles ...domain.Role) bool
	IsAdmin() bool
	IsModerator() bool
}
