package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelreviews/webclient/internal/core/domain"
)

func TestAuthAPI_LoginAcceptsAccessTokenAlias(t *testing.T) {
	var gotBody domain.Credentials
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"success":true,"data":{"user":{"_id":"u1","email":"a@b.c","first_name":"Amal","role":"Admin"},"accessToken":"jwt-1"}}`)
	})

	env, err := NewAuthAPI(client, AuthPaths{}).Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", gotBody.Email)
	require.True(t, env.Success)
	assert.Equal(t, "jwt-1", env.Data.Token)
	require.NotNil(t, env.Data.User)
	assert.Equal(t, "u1", env.Data.User.ID)
	assert.Equal(t, "Amal", env.Data.User.FirstName)
	assert.Equal(t, domain.RoleAdmin, env.Data.User.Role)
}

func TestAuthAPI_LoginFailureEnvelopeIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"Account disabled"}`)
	})

	env, err := NewAuthAPI(client, AuthPaths{}).Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, "Account disabled", env.FailureMessage())
}

func TestAuthAPI_ProfilePathsAreConfigurable(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"u1","email":"a@b.c","firstName":"Amal"}}`)
	})
	api := NewAuthAPI(client, AuthPaths{Profile: "/users/profile", ProfileUpdate: "/users/profile"})
	ctx := context.Background()

	me, err := api.Me(ctx)
	require.NoError(t, err)
	require.NotNil(t, me.Data.User)
	assert.Equal(t, "Amal", me.Data.User.FirstName)

	name := "Amal"
	_, err = api.UpdateProfile(ctx, domain.ProfileUpdate{FirstName: &name})
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /api/v1/users/profile", "PUT /api/v1/users/profile"}, paths)
}

func TestReviewsAPI_ListEncodesQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "hotel", q.Get("category"))
		assert.Empty(t, q.Get("featured"))
		_, _ = io.WriteString(w, `{"success":true,"data":[{"_id":"r1","title":"Nice","content":"ok","rating":4,"createdAt":"2024-05-01T10:00:00.123"}],"pagination":{"page":2,"limit":5,"total":6,"pages":2}}`)
	})

	env, err := NewReviewsAPI(client).List(context.Background(), domain.ListParams{Page: 2, Limit: 5, Category: "hotel"})
	require.NoError(t, err)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "r1", env.Data[0].ID)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 6, env.Pagination.Total)
}

func TestReviewsAPI_ActionsHitExpectedRoutes(t *testing.T) {
	var seen []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	reviews := NewReviewsAPI(client)
	ctx := context.Background()

	require.NoError(t, reviews.Like(ctx, "r1"))
	require.NoError(t, reviews.MarkHelpful(ctx, "r1"))
	require.NoError(t, reviews.Delete(ctx, "r1"))

	assert.Equal(t, []string{
		"POST /api/v1/reviews/r1/like",
		"POST /api/v1/reviews/r1/helpful",
		"DELETE /api/v1/reviews/r1",
	}, seen)
}

func TestReviewsAPI_WritesSendBody(t *testing.T) {
	var seen []string
	var bodies []domain.ReviewInput
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		var in domain.ReviewInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		bodies = append(bodies, in)
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"r9","title":"`+in.Title+`","rating":4}}`)
	})
	reviews := NewReviewsAPI(client)
	ctx := context.Background()
	in := domain.ReviewInput{Title: "Quiet riad", Content: "Rooftop breakfast", Rating: 4, Category: "hotel"}

	created, err := reviews.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "r9", created.Data.ID)

	in.Title = "Still quiet"
	updated, err := reviews.Update(ctx, "r 9", in)
	require.NoError(t, err)
	assert.Equal(t, "Still quiet", updated.Data.Title)

	assert.Equal(t, []string{"POST /api/v1/reviews", "PUT /api/v1/reviews/r 9"}, seen)
	require.Len(t, bodies, 2)
	assert.Equal(t, "Quiet riad", bodies[0].Title)
	assert.Equal(t, 4, bodies[1].Rating)
}

func TestArticlesAPI_WritesHitExpectedRoutes(t *testing.T) {
	var seen []string
	var created domain.ArticleInput
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&created)
		}
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"a1","title":"Souks at dawn","content":"body"}}`)
	})
	articles := NewArticlesAPI(client)
	ctx := context.Background()
	in := domain.ArticleInput{Title: "Souks at dawn", Content: "body", Tags: []string{"markets"}, Featured: true}

	env, err := articles.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "a1", env.Data.ID)
	_, err = articles.Update(ctx, "a1", in)
	require.NoError(t, err)
	require.NoError(t, articles.Publish(ctx, "a1"))
	require.NoError(t, articles.Delete(ctx, "a1"))

	assert.Equal(t, []string{
		"POST /api/v1/articles",
		"PUT /api/v1/articles/a1",
		"PUT /api/v1/articles/a1/publish",
		"DELETE /api/v1/articles/a1",
	}, seen)
	assert.Equal(t, in, created)
}

func TestAdminAPI_UsersAndRoleUpdate(t *testing.T) {
	var roleBody map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /api/v1/admin/users":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"_id":"u1","email":"a@b.c","firstName":"Amal","role":"moderator","isActive":false},{"_id":"u2","email":"c@d.e","role":"user"}]}`)
		case "PUT /api/v1/admin/users/u2/role":
			_ = json.NewDecoder(r.Body).Decode(&roleBody)
			_, _ = io.WriteString(w, `{"success":true}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	admin := NewAdminAPI(client)
	ctx := context.Background()

	env, err := admin.Users(ctx, domain.ListParams{})
	require.NoError(t, err)
	require.Len(t, env.Data, 2)
	assert.Equal(t, domain.RoleModerator, env.Data[0].Profile.Role)
	assert.False(t, env.Data[0].IsActive)
	assert.True(t, env.Data[1].IsActive)

	require.NoError(t, admin.UpdateUserRole(ctx, "u2", domain.RoleModerator))
	assert.Equal(t, "moderator", roleBody["role"])
}

func TestArticlesAPI_GetNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"NOT_FOUND","message":"Article not found"}}`)
	})

	_, err := NewArticlesAPI(client).Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Article not found", domain.ErrorMessage(err))
}

func TestAuthAPI_RejectedLoginDoesNotExpireSession(t *testing.T) {
	client, tokens := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"error":{"code":"INVALID_CREDENTIALS","message":"Invalid email or password"}}`)
	})
	ctx := context.Background()
	require.NoError(t, tokens.SetToken(ctx, "current"))
	h := &recordingHandler{tokens: tokens}
	client.OnUnauthorized(h)

	_, err := NewAuthAPI(client, AuthPaths{}).Login(ctx, domain.Credentials{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", domain.ErrorMessage(err))
	assert.Zero(t, h.calls)

	token, ok := tokens.Token(ctx)
	assert.True(t, ok)
	assert.Equal(t, "current", token)
}
