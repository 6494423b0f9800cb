package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelreviews/webclient/internal/core/domain"
)

type failingStorage struct {
	*Memory
	getErr error
	setErr error
}

func (f *failingStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *failingStorage) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}

func TestCredentialStore_TokenAndUser(t *testing.T) {
	ctx := context.Background()
	store := NewCredentialStore(NewMemory(), zerolog.Nop())

	_, ok := store.Token(ctx)
	assert.False(t, ok)
	_, ok = store.User(ctx)
	assert.False(t, ok)

	user := &domain.UserProfile{ID: "u1", Email: "amal@example.com", FirstName: "Amal", Role: domain.RoleAdmin}
	require.NoError(t, store.SetToken(ctx, "tok"))
	require.NoError(t, store.SetUser(ctx, user))

	tok, ok := store.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "tok", tok)

	got, ok := store.User(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Token(ctx)
	assert.False(t, ok)
	_, ok = store.User(ctx)
	assert.False(t, ok)
}

func TestCredentialStore_MalformedUserIsAbsentAndLogged(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, KeyUser, "{broken"))

	var buf bytes.Buffer
	store := NewCredentialStore(mem, zerolog.New(&buf))

	user, ok := store.User(ctx)
	assert.False(t, ok)
	assert.Nil(t, user)
	assert.True(t, strings.Contains(buf.String(), "malformed"), "expected a diagnostic log, got %q", buf.String())
}

func TestCredentialStore_EmptyTokenIsAbsent(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, KeyToken, ""))

	_, ok := NewCredentialStore(mem, zerolog.Nop()).Token(ctx)
	assert.False(t, ok)
}

func TestCredentialStore_BackendReadErrorIsAbsent(t *testing.T) {
	store := NewCredentialStore(&failingStorage{Memory: NewMemory(), getErr: errors.New("down")}, zerolog.Nop())
	_, ok := store.Token(context.Background())
	assert.False(t, ok)
	_, ok = store.User(context.Background())
	assert.False(t, ok)
}

func TestCredentialStore_WriteErrorIsReturned(t *testing.T) {
	store := NewCredentialStore(&failingStorage{Memory: NewMemory(), setErr: errors.New("disk full")}, zerolog.Nop())
	err := store.SetToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestCredentialStore_SetNilUserDropsCache(t *testing.T) {
	ctx := context.Background()
	store := NewCredentialStore(NewMemory(), zerolog.Nop())
	require.NoError(t, store.SetUser(ctx, &domain.UserProfile{ID: "u1"}))
	require.NoError(t, store.SetUser(ctx, nil))
	_, ok := store.User(ctx)
	assert.False(t, ok)
}

func TestDecodeUser_AcceptsSnakeCaseAlias(t *testing.T) {
	user, err := DecodeUser(`{"_id":"u9","first_name":"Amal","last_name":"Haddad","role":"Moderator"}`)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u9", user.ID)
	assert.Equal(t, "Amal", user.FirstName)
	assert.Equal(t, "Haddad", user.LastName)
	assert.Equal(t, domain.RoleModerator, user.Role)

	user, err = DecodeUser("null")
	require.NoError(t, err)
	assert.Nil(t, user)
}
