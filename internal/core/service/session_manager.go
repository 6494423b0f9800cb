package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/domain"
	"github.com/travelreviews/webclient/internal/core/ports"
	"github.com/travelreviews/webclient/internal/pkg/metrics"
	"github.com/travelreviews/webclient/internal/pkg/validation"
)

var errMalformedAuthResponse = errors.New("server returned an incomplete authentication response")

// ticket identifies a session-mutating call. A response commits only while its
// ticket is current.
type ticket struct {
	epoch uint64
	seq   uint64
}

// SessionManager owns the in-memory session and the persisted credential.
// It is the only component that mutates either.
//
// The mutex serializes state changes together with their credential writes.
// Calls to the auth API run outside it.
type SessionManager struct {
	store     ports.TokenStore
	auth      ports.AuthAPI
	nav       ports.Navigator
	validator *validation.Validator
	log       zerolog.Logger

	mu        sync.RWMutex
	user      *domain.UserProfile
	authed    bool
	loading   bool
	epoch     uint64
	updateSeq uint64
}

// NewSessionManager returns a manager in the Booting state. Call Start to
// resolve it.
func NewSessionManager(store ports.TokenStore, auth ports.AuthAPI, nav ports.Navigator, log zerolog.Logger) *SessionManager {
	if nav == nil {
		nav = ports.NavigatorFunc(func(context.Context) {})
	}
	return &SessionManager{
		store:     store,
		auth:      auth,
		nav:       nav,
		validator: validation.New(),
		log:       log,
		loading:   true,
	}
}

// Snapshot returns a copy of the current session.
func (m *SessionManager) Snapshot() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.Session{
		User:            m.user.Clone(),
		IsAuthenticated: m.authed,
		Loading:         m.loading,
	}
}

// Start validates a stored token against the profile endpoint. It always
// leaves the session out of Booting and never reports an error.
func (m *SessionManager) Start(ctx context.Context) {
	m.mu.Lock()
	m.loading = true
	t := ticket{epoch: m.epoch}
	m.mu.Unlock()

	if _, ok := m.store.Token(ctx); !ok {
		m.log.Debug().Msg("no stored token")
		m.bootFailed(ctx, t)
		return
	}

	if cached, ok := m.store.User(ctx); ok {
		m.mu.Lock()
		if m.current(t) && m.loading {
			m.user = cached
		}
		m.mu.Unlock()
	}

	env, err := m.auth.Me(ctx)
	switch {
	case err != nil:
		m.log.Info().Err(err).Msg("stored token rejected")
		m.bootFailed(ctx, t)
		return
	case env == nil || !env.Success || env.Data.User == nil:
		m.log.Info().Str("reason", env.FailureMessage()).Msg("profile fetch unsuccessful")
		m.bootFailed(ctx, t)
		return
	}

	user := env.Data.User
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(t) {
		m.stale("boot")
		m.loading = false
		if !m.authed {
			m.user = nil
		}
		return
	}
	if err := m.store.SetUser(ctx, user); err != nil {
		m.log.Warn().Err(err).Msg("refresh cached user failed")
	}
	m.setAuthenticated(user)
	m.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("session restored")
}

// bootFailed ends Booting. The credential is cleared only while the boot is
// still the latest session change.
func (m *SessionManager) bootFailed(ctx context.Context, t ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if !m.current(t) {
		m.stale("boot")
		if !m.authed {
			m.user = nil
		}
		return
	}
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("clear credential failed")
	}
	m.setAnonymous()
}

// Login authenticates with credentials and persists the returned token and
// user. Failures leave the session unchanged.
func (m *SessionManager) Login(ctx context.Context, creds domain.Credentials) domain.Result {
	if err := m.validator.Validate(creds); err != nil {
		return domain.Fail(err.Error())
	}
	t := m.beginEpoch()
	env, err := m.auth.Login(ctx, creds)
	if err != nil {
		return domain.Fail(domain.ErrorMessage(err))
	}
	return m.establish(ctx, t, "login", env)
}

// Register creates an account and signs in as it.
func (m *SessionManager) Register(ctx context.Context, reg domain.Registration) domain.Result {
	if err := m.validator.Validate(reg); err != nil {
		return domain.Fail(err.Error())
	}
	t := m.beginEpoch()
	env, err := m.auth.Register(ctx, reg)
	if err != nil {
		return domain.Fail(domain.ErrorMessage(err))
	}
	return m.establish(ctx, t, "register", env)
}

func (m *SessionManager) establish(ctx context.Context, t ticket, op string, env *domain.Envelope[domain.AuthPayload]) domain.Result {
	if env == nil || !env.Success {
		return domain.Fail(env.FailureMessage())
	}
	user, token := env.Data.User, env.Data.Token
	if user == nil || token == "" {
		return domain.Fail(errMalformedAuthResponse.Error())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(t) {
		m.stale(op)
		return domain.Fail(domain.ErrStaleResponse.Error())
	}
	if err := m.persist(ctx, token, user); err != nil {
		m.log.Error().Err(err).Str("operation", op).Msg("persist credential failed")
		return domain.Fail(err.Error())
	}
	m.setAuthenticated(user)
	m.log.Info().Str("operation", op).Str("user_id", user.ID).Msg("signed in")
	return domain.Ok()
}

// persist writes token and user. A half-written credential is removed.
func (m *SessionManager) persist(ctx context.Context, token string, user *domain.UserProfile) error {
	if err := m.store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.store.SetUser(ctx, user); err != nil {
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("roll back token failed")
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Logout clears the credential and the session. It always succeeds and
// supersedes every in-flight session call.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("clear credential failed")
	}
	wasAuthed := m.authed
	m.setAnonymous()
	if wasAuthed {
		m.log.Info().Msg("signed out")
	}
}

// UpdateProfile sends a partial profile edit. On success the session user and
// the cached user are replaced; the token is never touched.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) domain.Result {
	if err := m.validator.Validate(update); err != nil {
		return domain.Fail(err.Error())
	}
	if update.Empty() {
		return domain.Fail("no profile fields to update")
	}

	m.mu.Lock()
	if !m.authed || m.loading {
		m.mu.Unlock()
		return domain.Fail(domain.ErrNotAuthenticated.Error())
	}
	m.updateSeq++
	t := ticket{epoch: m.epoch, seq: m.updateSeq}
	m.mu.Unlock()

	env, err := m.auth.UpdateProfile(ctx, update)
	if err != nil {
		return domain.Fail(domain.ErrorMessage(err))
	}
	if env == nil || !env.Success {
		return domain.Fail(env.FailureMessage())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(t) || t.seq != m.updateSeq {
		m.stale("update_profile")
		return domain.Fail(domain.ErrStaleResponse.Error())
	}
	user := env.Data.User
	if user == nil {
		user = update.ApplyTo(m.user)
	}
	if err := m.store.SetUser(ctx, user); err != nil {
		m.log.Error().Err(err).Msg("save profile failed")
		return domain.Fail(fmt.Sprintf("save profile: %v", err))
	}
	m.user = user.Clone()
	return domain.Ok()
}

// HandleUnauthorized reacts to a 401 intercepted by the API client. An
// authenticated session is dropped and the login view is requested. During
// boot or while anonymous only the in-memory user is cleared.
func (m *SessionManager) HandleUnauthorized(ctx context.Context) {
	m.mu.Lock()
	if !m.authed || m.loading {
		if !m.authed {
			m.user = nil
		}
		m.mu.Unlock()
		return
	}
	m.epoch++
	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("clear credential failed")
	}
	m.setAnonymous()
	m.mu.Unlock()

	m.log.Info().Msg("session expired")
	m.nav.ToLogin(ctx)
}

// HasRole reports whether the current user holds one of roles exactly.
func (m *SessionManager) HasRole(roles ...domain.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return false
	}
	return slices.Contains(roles, m.user.Role)
}

func (m *SessionManager) IsAdmin() bool { return m.atLeast(domain.RoleAdmin) }

// IsModerator is true for moderators and admins.
func (m *SessionManager) IsModerator() bool { return m.atLeast(domain.RoleModerator) }

func (m *SessionManager) atLeast(role domain.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.Role.AtLeast(role)
}

func (m *SessionManager) beginEpoch() ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	return ticket{epoch: m.epoch}
}

// current must be called with mu held.
func (m *SessionManager) current(t ticket) bool {
	return t.epoch == m.epoch
}

func (m *SessionManager) stale(op string) {
	metrics.StaleResponsesTotal.WithLabelValues(op).Inc()
	m.log.Debug().Str("operation", op).Msg("discarding stale response")
}

func (m *SessionManager) setAuthenticated(user *domain.UserProfile) {
	m.user = user.Clone()
	m.authed = true
	m.loading = false
	metrics.SessionTransitionsTotal.WithLabelValues(string(domain.StateAuthenticated)).Inc()
}

func (m *SessionManager) setAnonymous() {
	wasAnonymous := !m.authed && m.user == nil && !m.loading
	m.user = nil
	m.authed = false
	m.loading = false
	if !wasAnonymous {
		metrics.SessionTransitionsTotal.WithLabelValues(string(domain.StateAnonymous)).Inc()
	}
}
