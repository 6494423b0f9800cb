package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
)

const (
	KeyToken = "token"
	KeyUser  = "user"
)

// CredentialStore is the Token Store: the bearer token and the cached profile
// kept side by side in one Storage backend.
type CredentialStore struct {
	storage ports.Storage
	log     zerolog.Logger
}

func NewCredentialStore(storage ports.Storage, log zerolog.Logger) *CredentialStore {
	return &CredentialStore{storage: storage, log: log}
}

// Token returns the stored token. Backend failures read as absent.
func (s *CredentialStore) Token(ctx context.Context) (string, bool) {
	v, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("read token failed, treating as absent")
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (s *CredentialStore) SetToken(ctx context.Context, token string) error {
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// User decodes the cached profile. Missing or malformed data reads as absent;
// decode failures are logged, never returned.
func (s *CredentialStore) User(ctx context.Context) (*domain.UserProfile, bool) {
	raw, ok, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		s.log.Warn().Err(err).Msg("read cached user failed, treating as absent")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	user, err := DecodeUser(raw)
	if err != nil {
		s.log.Warn().Err(err).Int("bytes", len(raw)).Msg("cached user is malformed, treating as absent")
		return nil, false
	}
	return user, user != nil
}

func (s *CredentialStore) SetUser(ctx context.Context, user *domain.UserProfile) error {
	if user == nil {
		if err := s.storage.Delete(ctx, KeyUser); err != nil {
			return fmt.Errorf("drop cached user: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// Clear removes the token and the cached profile in one backend call.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// DecodeUser parses a persisted profile. "null" and empty input decode to nil.
func DecodeUser(raw string) (*domain.UserProfile, error) {
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var user domain.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode cached user: %w", err)
	}
	return &user, nil
}
