package devapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/travelreviews/webclient/internal/core/domain"
)

type testServer struct {
	t        *testing.T
	e        http.Handler
	accounts *AccountService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	accounts := NewAccountService(NewMemoryAccountRepository(), "secret", time.Hour)
	if _, err := accounts.EnsureAdmin(context.Background(), "admin@example.com", "Admin1234"); err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	e := NewRouter(Config{
		BasePath:   "/api/v1",
		JWTSecret:  "secret",
		Log:        zerolog.Nop(),
		Registerer: prometheus.NewRegistry(),
	}, accounts, NewReviewCatalog(SeedReviews()))
	return &testServer{t: t, e: e, accounts: accounts}
}

type envelope struct {
	Success    bool               `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      *domain.ErrorBody  `json:"error"`
	Pagination *domain.Pagination `json:"pagination"`
}

func (s *testServer) do(method, path, token, body string) (int, envelope) {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if code != http.StatusOK {
		s.t.Fatalf("login %s: status %d, error %+v", email, code, env.Error)
	}
	var payload domain.AuthPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		s.t.Fatalf("decode auth payload: %v", err)
	}
	return payload.Token
}

const aliceJSON = `{"username":"alice","email":"alice@example.com","password":"Passw0rd","firstName":"Alice","lastName":"Martin"}`

func TestServer_RegisterThenMe(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201 success, got %d %+v", code, env.Error)
	}
	var payload domain.AuthPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Token == "" || payload.User == nil || payload.User.Role != domain.RoleUser {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	for _, path := range []string{"/api/v1/auth/me", "/api/v1/users/profile"} {
		code, env = s.do(http.MethodGet, path, payload.Token, "")
		if code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, code)
		}
		var me domain.UserPayload
		if err := json.Unmarshal(env.Data, &me); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if me.User == nil || me.User.Email != "alice@example.com" {
			t.Fatalf("%s: unexpected user %+v", path, me.User)
		}
	}
}

func TestServer_RegisterErrors(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/register", "", strings.Replace(aliceJSON, "Passw0rd", "password1", 1))
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "WEAK_PASSWORD" {
		t.Fatalf("expected WEAK_PASSWORD, got %d %+v", code, env.Error)
	}

	code, env = s.do(http.MethodPost, "/api/v1/auth/register", "", `{"email":"not-an-email"}`)
	if code != http.StatusBadRequest || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %d %+v", code, env.Error)
	}

	s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	code, env = s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	if code != http.StatusConflict || env.Error.Code != "USER_EXISTS" {
		t.Fatalf("expected 409 USER_EXISTS, got %d %+v", code, env.Error)
	}
	if env.Error.Message != "User with this email already exists" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestServer_LoginErrors(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@example.com","password":"nope"}`)
	if code != http.StatusUnauthorized || env.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %+v", code, env.Error)
	}
	if env.Error.Message != "Invalid email or password" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}

	code, env = s.do(http.MethodPost, "/api/v1/auth/login", "", `{"password":"x"}`)
	if code != http.StatusBadRequest || env.Error.Code != "MISSING_CREDENTIALS" {
		t.Fatalf("expected 400 MISSING_CREDENTIALS, got %d %+v", code, env.Error)
	}
}

func TestServer_MeRequiresToken(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/auth/me", "", "")
	if code != http.StatusUnauthorized || env.Success || env.Error == nil || env.Error.Code != "NO_TOKEN" {
		t.Fatalf("expected 401 NO_TOKEN, got %d %+v", code, env.Error)
	}
	code, env = s.do(http.MethodGet, "/api/v1/auth/me", "garbage", "")
	if code != http.StatusUnauthorized || env.Error == nil || env.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("expected 401 INVALID_TOKEN for bad token, got %d %+v", code, env.Error)
	}
}

func TestServer_UpdateProfile(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	token := s.login("alice@example.com", "Passw0rd")

	code, env := s.do(http.MethodPut, "/api/v1/auth/profile", token, `{"firstName":"Alicia"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", code, env.Error)
	}
	var me domain.UserPayload
	_ = json.Unmarshal(env.Data, &me)
	if me.User.FirstName != "Alicia" || me.User.LastName != "Martin" {
		t.Fatalf("unexpected user %+v", me.User)
	}

	code, env = s.do(http.MethodPut, "/api/v1/auth/profile", token, `{"avatar":"not a url"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad avatar, got %d", code)
	}
}

func TestServer_ListReviewsPaginates(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/reviews?limit=2&page=1", "", "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var reviews []domain.Review
	if err := json.Unmarshal(env.Data, &reviews); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(reviews))
	}
	if env.Pagination == nil || env.Pagination.Total != 4 || env.Pagination.Pages != 2 || !env.Pagination.HasNext {
		t.Fatalf("unexpected pagination %+v", env.Pagination)
	}
}

func TestServer_AdminRoutesAreRoleGated(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	userToken := s.login("alice@example.com", "Passw0rd")
	adminToken := s.login("admin@example.com", "Admin1234")

	code, _ := s.do(http.MethodGet, "/api/v1/admin/stats", userToken, "")
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for user on stats, got %d", code)
	}

	code, env := s.do(http.MethodGet, "/api/v1/admin/stats", adminToken, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200 for admin on stats, got %d", code)
	}
	var stats domain.AdminStats
	_ = json.Unmarshal(env.Data, &stats)
	if stats.TotalUsers != 2 || stats.TotalReviews != 4 || stats.PendingReviews != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	code, env = s.do(http.MethodGet, "/api/v1/admin/users", adminToken, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200 for admin users, got %d", code)
	}
	var users []domain.AdminUser
	if err := json.Unmarshal(env.Data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 || !users[0].IsActive || users[0].Profile.Email == "" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestServer_RoleChangeInvalidatesOldToken(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	var payload domain.AuthPayload
	_ = json.Unmarshal(env.Data, &payload)
	adminToken := s.login("admin@example.com", "Admin1234")

	code, env := s.do(http.MethodPut, "/api/v1/admin/users/"+payload.User.ID+"/role", adminToken, `{"role":"moderator"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %+v", code, env.Error)
	}

	code, env = s.do(http.MethodGet, "/api/v1/auth/me", payload.Token, "")
	if code != http.StatusUnauthorized || env.Error.Code != "ROLE_CHANGED" {
		t.Fatalf("expected 401 ROLE_CHANGED, got %d %+v", code, env.Error)
	}

	modToken := s.login("alice@example.com", "Passw0rd")
	code, _ = s.do(http.MethodGet, "/api/v1/admin/stats", modToken, "")
	if code != http.StatusOK {
		t.Fatalf("expected moderator to read stats, got %d", code)
	}
	code, _ = s.do(http.MethodGet, "/api/v1/admin/users", modToken, "")
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for moderator on users, got %d", code)
	}

	code, env = s.do(http.MethodPut, "/api/v1/admin/users/"+payload.User.ID+"/role", adminToken, `{"role":"root"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", code)
	}
}

func TestServer_DeleteUser(t *testing.T) {
	s := newTestServer(t)
	_, env := s.do(http.MethodPost, "/api/v1/auth/register", "", aliceJSON)
	var payload domain.AuthPayload
	_ = json.Unmarshal(env.Data, &payload)
	adminToken := s.login("admin@example.com", "Admin1234")

	code, _ := s.do(http.MethodDelete, "/api/v1/admin/users/"+payload.User.ID, adminToken, "")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	code, env = s.do(http.MethodDelete, "/api/v1/admin/users/"+payload.User.ID, adminToken, "")
	if code != http.StatusNotFound || env.Error.Code != "USER_NOT_FOUND" {
		t.Fatalf("expected 404 USER_NOT_FOUND, got %d %+v", code, env.Error)
	}

	code, _ = s.do(http.MethodGet, "/api/v1/auth/me", payload.Token, "")
	if code != http.StatusNotFound {
		t.Fatalf("expected deleted user's token to be rejected, got %d", code)
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestServer_ServesOpenAPIDocument(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q", doc.BasePath)
	}
	for _, path := range []string{"/auth/login", "/auth/me", "/admin/users/{id}/role"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("path %s missing from document", path)
		}
	}
}
