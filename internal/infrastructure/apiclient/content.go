package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/travelreviews/webclient/internal/core/domain"
)

func listQuery(p domain.ListParams) url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Featured {
		q.Set("featured", "true")
	}
	return q
}

// get decodes a GET response into a fresh envelope of T.
func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*domain.Envelope[T], error) {
	var env domain.Envelope[T]
	if err := c.Get(ctx, path, query, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (*domain.Envelope[T], error) {
	var env domain.Envelope[T]
	if err := c.Do(ctx, method, path, nil, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// ReviewsAPI implements ports.ReviewsAPI.
type ReviewsAPI struct{ client *Client }

func NewReviewsAPI(client *Client) *ReviewsAPI { return &ReviewsAPI{client: client} }

func (r *ReviewsAPI) List(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.Review], error) {
	return get[[]domain.Review](ctx, r.client, "/reviews", listQuery(params))
}

func (r *ReviewsAPI) Get(ctx context.Context, id string) (*domain.Envelope[domain.Review], error) {
	return get[domain.Review](ctx, r.client, "/reviews/"+url.PathEscape(id), nil)
}

func (r *ReviewsAPI) Create(ctx context.Context, in domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
	return send[domain.Review](ctx, r.client, http.MethodPost, "/reviews", in)
}

func (r *ReviewsAPI) Update(ctx context.Context, id string, in domain.ReviewInput) (*domain.Envelope[domain.Review], error) {
	return send[domain.Review](ctx, r.client, http.MethodPut, "/reviews/"+url.PathEscape(id), in)
}

func (r *ReviewsAPI) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, "/reviews/"+url.PathEscape(id), nil)
}

func (r *ReviewsAPI) Like(ctx context.Context, id string) error {
	return r.client.Post(ctx, "/reviews/"+url.PathEscape(id)+"/like", nil, nil)
}

func (r *ReviewsAPI) MarkHelpful(ctx context.Context, id string) error {
	return r.client.Post(ctx, "/reviews/"+url.PathEscape(id)+"/helpful", nil, nil)
}

// ArticlesAPI implements ports.ArticlesAPI.
type ArticlesAPI struct{ client *Client }

func NewArticlesAPI(client *Client) *ArticlesAPI { return &ArticlesAPI{client: client} }

func (a *ArticlesAPI) List(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.Article], error) {
	return get[[]domain.Article](ctx, a.client, "/articles", listQuery(params))
}

func (a *ArticlesAPI) Get(ctx context.Context, id string) (*domain.Envelope[domain.Article], error) {
	return get[domain.Article](ctx, a.client, "/articles/"+url.PathEscape(id), nil)
}

func (a *ArticlesAPI) Create(ctx context.Context, in domain.ArticleInput) (*domain.Envelope[domain.Article], error) {
	return send[domain.Article](ctx, a.client, http.MethodPost, "/articles", in)
}

func (a *ArticlesAPI) Update(ctx context.Context, id string, in domain.ArticleInput) (*domain.Envelope[domain.Article], error) {
	return send[domain.Article](ctx, a.client, http.MethodPut, "/articles/"+url.PathEscape(id), in)
}

func (a *ArticlesAPI) Delete(ctx context.Context, id string) error {
	return a.client.Delete(ctx, "/articles/"+url.PathEscape(id), nil)
}

func (a *ArticlesAPI) Publish(ctx context.Context, id string) error {
	return a.client.Put(ctx, "/articles/"+url.PathEscape(id)+"/publish", nil, nil)
}

// ContactAPI implements ports.ContactAPI.
type ContactAPI struct{ client *Client }

func NewContactAPI(client *Client) *ContactAPI { return &ContactAPI{client: client} }

func (c *ContactAPI) Send(ctx context.Context, msg domain.ContactMessage) error {
	return c.client.Post(ctx, "/contact", msg, nil)
}

// AdminAPI implements ports.AdminAPI.
type AdminAPI struct{ client *Client }

func NewAdminAPI(client *Client) *AdminAPI { return &AdminAPI{client: client} }

func (a *AdminAPI) Stats(ctx context.Context) (*domain.Envelope[domain.AdminStats], error) {
	return get[domain.AdminStats](ctx, a.client, "/admin/stats", nil)
}

func (a *AdminAPI) Users(ctx context.Context, params domain.ListParams) (*domain.Envelope[[]domain.AdminUser], error) {
	return get[[]domain.AdminUser](ctx, a.client, "/admin/users", listQuery(params))
}

func (a *AdminAPI) UpdateUserRole(ctx context.Context, userID string, role domain.Role) error {
	body := map[string]string{"role": string(role)}
	return a.client.Put(ctx, "/admin/users/"+url.PathEscape(userID)+"/role", body, nil)
}

func (a *AdminAPI) DeleteUser(ctx context.Context, userID string) error {
	return a.client.Delete(ctx, "/admin/users/"+url.PathEscape(userID), nil)
}
