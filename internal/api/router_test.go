package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/api/handler"
	"github.com/travelreviews/webclient/internal/core/domain"
)

type fakeSessions struct {
	mu      sync.Mutex
	session domain.Session
	users   map[string]*domain.UserProfile
	logins  int
}

func (f *fakeSessions) Snapshot() domain.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Session{User: f.session.User.Clone(), IsAuthenticated: f.session.IsAuthenticated, Loading: f.session.Loading}
}

func (f *fakeSessions) Start(context.Context) {}

func (f *fakeSessions) Login(_ context.Context, creds domain.Credentials) domain.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	u, ok := f.users[creds.Email]
	if !ok || creds.Password != "secret-pass" {
		return domain.Fail("Invalid email or password")
	}
	f.session = domain.Session{User: u.Clone(), IsAuthenticated: true}
	return domain.Ok()
}

func (f *fakeSessions) Register(context.Context, domain.Registration) domain.Result {
	return domain.Fail("not supported")
}

func (f *fakeSessions) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.session = domain.Session{}
}

func (f *fakeSessions) UpdateProfile(_ context.Context, u domain.ProfileUpdate) domain.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.session.IsAuthenticated {
		return domain.Fail(domain.ErrNotAuthenticated.Error())
	}
	f.session.User = u.ApplyTo(f.session.User)
	return domain.Ok()
}

func (f *fakeSessions) HasRole(roles ...domain.Role) bool { return false }
func (f *fakeSessions) IsAdmin() bool                     { return false }
func (f *fakeSessions) IsModerator() bool                 { return false }

type fakeReviews struct{}

func (fakeReviews) List(_ context.Context, p domain.ListParams) (*domain.Envelope[[]domain.Review], error) {
	return &domain.Envelope[[]domain.Review]{Success: true, Data: []domain.Review{{ID: "r1", Title: "Riad stay", Rating: 5, Category: p.Category}}}, nil
}
func (fakeReviews) Get(context.Context, string) (*domain.Envelope[domain.Review], error) {
	return nil, errors.New("unused")
}
func (fakeReviews) Create(context.Context, domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
	return nil, errors.New("unused")
}
func (fakeReviews) Update(context.Context, string, domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
	return nil, errors.New("unused")
}
func (fakeReviews) Delete(context.Context, string) error      { return errors.New("unused") }
func (fakeReviews) Like(context.Context, string) error        { return errors.New("unused") }
func (fakeReviews) MarkHelpful(context.Context, string) error { return errors.New("unused") }

type fakeAdmin struct{ statsErr error }

func (a fakeAdmin) Stats(context.Context) (*domain.Envelope[domain.AdminStats], error) {
	if a.statsErr != nil {
		return nil, a.statsErr
	}
	return &domain.Envelope[domain.AdminStats]{Success: true, Data: domain.AdminStats{TotalUsers: 3}}, nil
}
func (fakeAdmin) Users(context.Context, domain.ListParams) (*domain.Envelope[[]domain.AdminUser], error) {
	return nil, errors.New("unused")
}
func (fakeAdmin) UpdateUserRole(context.Context, string, domain.Role) error { return errors.New("unused") }
func (fakeAdmin) DeleteUser(context.Context, string) error                  { return errors.New("unused") }

func newTestRouter(t *testing.T, sessions *fakeSessions, admin fakeAdmin, checks map[string]handler.Check) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Sessions:   sessions,
		Reviews:    fakeReviews{},
		Admin:      admin,
		Checks:     checks,
		Log:        zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	})
}

func newSessions() *fakeSessions {
	return &fakeSessions{users: map[string]*domain.UserProfile{
		"user@example.com":  {ID: "u1", Email: "user@example.com", Role: domain.RoleUser},
		"mod@example.com":   {ID: "u2", Email: "mod@example.com", Role: domain.RoleModerator},
		"admin@example.com": {ID: "u3", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
}

func do(h http.Handler, method, target, body, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email string) {
	t.Helper()
	rec := do(h, http.MethodPost, "/login", `{"email":"`+email+`","password":"secret-pass"}`, "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d %s", email, rec.Code, rec.Body.String())
	}
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	if rec := do(h, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_ReadinessReportsFailingCheck(t *testing.T) {
	checks := map[string]handler.Check{
		"storage": func(context.Context) error { return nil },
		"api":     func(context.Context) error { return errors.New("connection refused") },
	}
	h := newTestRouter(t, newSessions(), fakeAdmin{}, checks)
	rec := do(h, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("expected failing check in body: %s", rec.Body.String())
	}
}

func TestRouter_AnonymousIsRedirectedToLogin(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	rec := do(h, http.MethodGet, "/admin/stats", "", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login?next=%2Fadmin%2Fstats" {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_BootingSessionIsPending(t *testing.T) {
	sessions := newSessions()
	sessions.session.Loading = true
	h := newTestRouter(t, sessions, fakeAdmin{}, nil)
	rec := do(h, http.MethodGet, "/me", "", "")
	if rec.Code != http.StatusServiceUnavailable || rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected 503 pending, got %d", rec.Code)
	}
}

func TestRouter_LoginFailureCarriesServerMessage(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	rec := do(h, http.MethodPost, "/login", `{"email":"user@example.com","password":"wrong-pass"}`, "application/json")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var env domain.Envelope[any]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Success || env.FailureMessage() != "Invalid email or password" {
		t.Fatalf("unexpected envelope: %s", rec.Body.String())
	}
}

func TestRouter_LoginValidationSkipsSession(t *testing.T) {
	sessions := newSessions()
	h := newTestRouter(t, sessions, fakeAdmin{}, nil)
	rec := do(h, http.MethodPost, "/login", `{"password":"x"}`, "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if sessions.logins != 0 {
		t.Fatalf("session login must not run on invalid input")
	}
}

func TestRouter_FormLoginRedirectsToNext(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	form := url.Values{"email": {"admin@example.com"}, "password": {"secret-pass"}, "next": {"/admin/stats"}}
	rec := do(h, http.MethodPost, "/login", form.Encode(), "application/x-www-form-urlencoded")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/stats" {
		t.Fatalf("expected 303 to /admin/stats, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_RoleGating(t *testing.T) {
	cases := []struct {
		email    string
		path     string
		status   int
		location string
	}{
		{"user@example.com", "/me", http.StatusOK, ""},
		{"user@example.com", "/moderation/reviews", http.StatusFound, "/unauthorized"},
		{"mod@example.com", "/moderation/reviews?category=hotel", http.StatusOK, ""},
		{"mod@example.com", "/admin/stats", http.StatusFound, "/unauthorized"},
		{"admin@example.com", "/moderation/reviews", http.StatusOK, ""},
		{"admin@example.com", "/admin/stats", http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.email+tc.path, func(t *testing.T) {
			h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
			login(t, h, tc.email)
			rec := do(h, http.MethodGet, tc.path, "", "")
			if rec.Code != tc.status || rec.Header().Get("Location") != tc.location {
				t.Fatalf("expected %d %q, got %d %q", tc.status, tc.location, rec.Code, rec.Header().Get("Location"))
			}
		})
	}
}

func TestRouter_ModerationRelaysEnvelope(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	login(t, h, "mod@example.com")
	rec := do(h, http.MethodGet, "/moderation/reviews?category=hotel", "", "")

	var env domain.Envelope[[]domain.Review]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !env.Success || len(env.Data) != 1 || env.Data[0].Category != "hotel" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	if rec := do(h, http.MethodGet, "/moderation/reviews?page=zero", "", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page, got %d", rec.Code)
	}
}

func TestRouter_UpstreamExpiryIsRelayed(t *testing.T) {
	admin := fakeAdmin{statsErr: &domain.APIError{Status: http.StatusUnauthorized, Code: "TOKEN_EXPIRED", Message: "Token has expired"}}
	h := newTestRouter(t, newSessions(), admin, nil)
	login(t, h, "admin@example.com")
	rec := do(h, http.MethodGet, "/admin/stats", "", "")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), "TOKEN_EXPIRED") {
		t.Fatalf("expected relayed 401, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_UpdateMeAndLogout(t *testing.T) {
	sessions := newSessions()
	h := newTestRouter(t, sessions, fakeAdmin{}, nil)
	login(t, h, "user@example.com")

	rec := do(h, http.MethodPut, "/me", `{"firstName":"Amal"}`, "application/json")
	if rec.Code != http.StatusOK || sessions.Snapshot().User.FirstName != "Amal" {
		t.Fatalf("expected profile update, got %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(h, http.MethodPost, "/logout", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/me", "", ""); rec.Code != http.StatusFound {
		t.Fatalf("expected redirect after logout, got %d", rec.Code)
	}
}

func TestRouter_UnauthorizedView(t *testing.T) {
	h := newTestRouter(t, newSessions(), fakeAdmin{}, nil)
	rec := do(h, http.MethodGet, "/unauthorized", "", "")
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "ACCESS_DENIED") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
