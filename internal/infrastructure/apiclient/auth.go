package apiclient

import (
	"context"

	"github.com/travelreviews/webclient/internal/core/domain"
)

const (
	DefaultProfilePath       = "/auth/me"
	DefaultProfileUpdatePath = "/auth/profile"
)

// AuthPaths locates the profile endpoints, which differ between deployments.
type AuthPaths struct {
	Profile       string
	ProfileUpdate string
}

// AuthAPI implements ports.AuthAPI over the REST client.
type AuthAPI struct {
	client *Client
	paths  AuthPaths
}

func NewAuthAPI(client *Client, paths AuthPaths) *AuthAPI {
	if paths.Profile == "" {
		paths.Profile = DefaultProfilePath
	}
	if paths.ProfileUpdate == "" {
		paths.ProfileUpdate = DefaultProfileUpdatePath
	}
	return &AuthAPI{client: client, paths: paths}
}

func (a *AuthAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.Envelope[domain.AuthPayload], error) {
	var env domain.Envelope[domain.AuthPayload]
	if err := a.client.Post(credentialRequest(ctx), "/auth/login", creds, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *AuthAPI) Register(ctx context.Context, reg domain.Registration) (*domain.Envelope[domain.AuthPayload], error) {
	var env domain.Envelope[domain.AuthPayload]
	if err := a.client.Post(credentialRequest(ctx), "/auth/register", reg, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *AuthAPI) Me(ctx context.Context) (*domain.Envelope[domain.UserPayload], error) {
	var env domain.Envelope[domain.UserPayload]
	if err := a.client.Get(ctx, a.paths.Profile, nil, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Envelope[domain.UserPayload], error) {
	var env domain.Envelope[domain.UserPayload]
	if err := a.client.Put(ctx, a.paths.ProfileUpdate, update, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
